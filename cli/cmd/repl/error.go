package repl

import (
	"errors"

	"github.com/ardnew/argot/getopt"
)

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrSplit        = getopt.NewError("invalid argument line")
)
