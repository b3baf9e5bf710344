package compact

import (
	"github.com/pkg/errors"

	"github.com/breezy-team/breezy-sub003/hashset"
)

var (
	// ErrType is returned when an element is not one of the permitted kinds.
	ErrType = errors.New("compact: unsupported element type")

	// ErrInvalidArgument is returned for a tuple longer than MaxSize, or when
	// operating on a nil tuple.
	ErrInvalidArgument = errors.New("compact: invalid argument")

	// ErrIndex is returned when an element index is out of range.
	ErrIndex = errors.New("compact: index out of range")

	// ErrOutOfMemory is returned when the intern pool cannot grow.
	ErrOutOfMemory = hashset.ErrOutOfMemory
)
