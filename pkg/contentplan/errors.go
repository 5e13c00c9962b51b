package contentplan

import (
	"strconv"
	"strings"
)

// ValidationError captures a single field-level problem with a plan.
type ValidationError struct {
	Section int // 1-based section position, 0 for plan-level issues
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	parts := []string{formatSection(e.Section)}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ValidationErrors aggregates multiple validation issues.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Issues returns a copy of the underlying validation errors.
func (errs ValidationErrors) Issues() []ValidationError {
	return append([]ValidationError(nil), errs...)
}

func formatSection(pos int) string {
	if pos <= 0 {
		return "plan"
	}
	return "section " + strconv.Itoa(pos)
}
