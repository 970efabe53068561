package notes

import "errors"

var (
	ErrInvalidTitle  = errors.New("invalid note title")
	ErrReservedTitle = errors.New("reserved note title")
	ErrNoteExists    = errors.New("note already exists")
	ErrNoteNotFound  = errors.New("note not found")
	ErrMissingHeader = errors.New("note has no title header")
)
