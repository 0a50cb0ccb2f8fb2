package postfx

import (
	"errors"

	"github.com/gogpu/postfx/internal/grid"
)

var (
	// ErrInvalidConfig is returned for configurations that fail validation.
	ErrInvalidConfig = errors.New("postfx: invalid config")

	// ErrClosed is returned by a Pipeline after Close.
	ErrClosed = errors.New("postfx: pipeline closed")

	// ErrInvalidDimensions is returned for empty or nil grids.
	ErrInvalidDimensions = grid.ErrInvalidDimensions

	// ErrSizeMismatch is returned when grids that must match in size do not.
	ErrSizeMismatch = grid.ErrSizeMismatch

	// ErrAliasedGrid is returned when a kernel would read and write the
	// same grid.
	ErrAliasedGrid = grid.ErrAliased

	// ErrUnsupportedFormat is returned by ReadFile and WriteFile.
	ErrUnsupportedFormat = grid.ErrUnsupportedFormat
)
