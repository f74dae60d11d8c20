package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrShareDisabled = errors.New("share index disabled")
)
