package analysis

import "fmt"

// InsufficientDataError indicates that no correlation can be defined.
type InsufficientDataError struct {
	Columns int
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for correlation (%d numeric columns): %s", e.Columns, e.Reason)
}
