package repository

import "errors"

// ErrNotFound is returned by every repository when no row matches. Services
// translate it into the HTTP-facing error taxonomy.
var ErrNotFound = errors.New("not found")
