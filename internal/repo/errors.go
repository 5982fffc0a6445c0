package repo

import "errors"

// ErrNotFound marks expected absence (no session today, unknown user) so
// callers can tell it apart from an actual storage failure.
var ErrNotFound = errors.New("not found")
