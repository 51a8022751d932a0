package services

import "errors"

// ErrValidation marks input errors caught before any write. Handlers map it
// to a 400 response.
var ErrValidation = errors.New("validation failed")
