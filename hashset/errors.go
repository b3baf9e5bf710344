package hashset

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when mutating a nil Set.
	ErrInvalidArgument = errors.New("hashset: invalid argument")

	// ErrOutOfMemory is returned when growing the table would exceed the
	// maximum capacity of the Set. The Set is left unchanged.
	ErrOutOfMemory = errors.New("hashset: out of memory")
)
