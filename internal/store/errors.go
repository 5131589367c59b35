package store

import "fmt"

// InvalidArgumentError reports an operation that received a value it cannot
// work with, carrying the offending value so the cause is inspectable.
type InvalidArgumentError struct {
	Op    string
	Value any
	Msg   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("store: %s: invalid argument %T(%v): %s", e.Op, e.Value, e.Value, e.Msg)
}
