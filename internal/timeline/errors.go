package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoNarration means no section produced usable narration audio.
	ErrNoNarration = errors.New("no narration audio")
	// ErrNoVisuals means no section could be given a visual clip.
	ErrNoVisuals = errors.New("no visual clips placed")
)

// FatalAssemblyError stops assembly before any output is written.
type FatalAssemblyError struct {
	Section string
	Err     error
}

func (e *FatalAssemblyError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("assembly failed at section %q: %v", e.Section, e.Err)
	}
	return fmt.Sprintf("assembly failed: %v", e.Err)
}

func (e *FatalAssemblyError) Unwrap() error { return e.Err }

// Fatalf builds a FatalAssemblyError wrapping err.
func Fatalf(section string, err error) error {
	return &FatalAssemblyError{Section: section, Err: err}
}
