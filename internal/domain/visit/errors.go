package visit

import "fmt"

// ValidationError marks bad or missing input. Handlers surface it as a
// 400 and nothing is persisted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PreconditionError marks an operation that is not allowed in the
// record's current state, such as signing twice or editing a locked
// field. Handlers surface it as a 409 and the record is unchanged.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

func preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}
