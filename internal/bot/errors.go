package bot

import "errors"

// ErrInvalidState means a unit's mode has no defined transition. It is a
// programming or configuration error, never a game condition.
var ErrInvalidState = errors.New("invalid unit state")
