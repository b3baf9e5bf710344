package dirstate

import "github.com/pkg/errors"

// ErrNotDir is returned when the scan root is not a directory.
var ErrNotDir = errors.New("dirstate: not a directory")
