package domain

import "errors"

var (
	ErrDialogClosed     = errors.New("application dialog is closed")
	ErrNotEditing       = errors.New("application form is not editable in its current state")
	ErrReadOnlyField    = errors.New("field is read-only")
	ErrUnknownField     = errors.New("unknown form field")
	ErrDisposed         = errors.New("application form has been disposed")
	ErrValidationFailed = errors.New("application form has validation errors")
)
