package app

import "errors"

var (
	ErrNoSource        = errors.New("no record source configured")
	ErrDuplicateColumn = errors.New("duplicate column definition")
)
