package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrLoginTaken is returned when users.login would be duplicated.
	ErrLoginTaken = errors.New("login already taken")
	// ErrForeignColumn is returned when a board update names a column of another board.
	ErrForeignColumn = errors.New("column does not belong to board")
)
