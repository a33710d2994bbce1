package bracket

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIllegalState = errors.New("illegal state transition")
	ErrNotFound     = errors.New("not found")
)
