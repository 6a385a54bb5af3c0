// internal/grid/errors.go
package grid

import "errors"

var (
	ErrOutOfBounds      = errors.New("cell id or coordinate out of bounds")
	ErrAlreadyOwner     = errors.New("buyer already owns this cell")
	ErrNotOwner         = errors.New("editor is not the owner of this cell")
	ErrConflict         = errors.New("cell changed since it was quoted")
	ErrStoreUnavailable = errors.New("persistent store unavailable")
)
