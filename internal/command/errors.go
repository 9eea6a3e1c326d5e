package command

import "errors"

var (
	ErrDecode         = errors.New("decode failed")
	ErrUnknownVariant = errors.New("unknown command")
	ErrShape          = errors.New("shape mismatch")
	ErrField          = errors.New("invalid field")
)
