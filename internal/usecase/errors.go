package usecase

import "errors"

// ErrInvalidDate flags a malformed date override on a request. It is fatal
// to that request only; background runs and other requests are unaffected.
var ErrInvalidDate = errors.New("invalid date input")
