package lessons

import "fmt"

// ValidationError reports a request that would break a lesson invariant,
// such as quiz answers that cannot be paired with the questions.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
