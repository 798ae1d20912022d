package models

import "errors"

// ErrVersionConflict is returned by a flip store when a save carries a
// version that no longer matches the persisted row.
var ErrVersionConflict = errors.New("flip version conflict")
