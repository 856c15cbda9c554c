package payroll

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid payroll input")
	ErrMalformedBracketTable = errors.New("malformed bracket table")
	ErrEmployeeNotFound      = errors.New("payroll employee not found")
	ErrNoRunForPeriod        = errors.New("no payroll run for period")
	ErrUnsupportedChannel    = errors.New("unsupported payslip delivery channel")
	ErrNothingToPay          = errors.New("no processed employees to mark paid")
)

// InputError names the field that failed validation. It matches
// ErrInvalidInput under errors.Is.
type InputError struct {
	EmployeeID string
	Field      string
	Reason     string
}

func (e *InputError) Error() string {
	if e.EmployeeID == "" {
		return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: employee %s: %s %s", ErrInvalidInput, e.EmployeeID, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
