package timeline

// Status classifies the result of building an optional track.
type Status int

const (
	StatusOk Status = iota
	StatusDegraded
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome carries a value together with whether it was produced normally, the
// track degraded to a fallback, or assembly must stop.
type Outcome[T any] struct {
	Status Status
	Value  T
	Reason string
	Err    error
}

// Ok wraps a successfully produced value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusOk, Value: v}
}

// Degraded records a soft failure; the zero value of T is the fallback.
func Degraded[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusDegraded, Reason: reason}
}

// Fatal records an error that stops assembly.
func Fatal[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusFatal, Err: err, Reason: err.Error()}
}

// IsOk reports whether the value was produced normally.
func (o Outcome[T]) IsOk() bool { return o.Status == StatusOk }

// IsDegraded reports whether the track fell back.
func (o Outcome[T]) IsDegraded() bool { return o.Status == StatusDegraded }
