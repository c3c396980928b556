package match

import "errors"

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrAlreadyAccepted = errors.New("parcel already has an accepted match")
	ErrStale           = errors.New("another match was accepted first")
	ErrNotPending      = errors.New("match is not pending")
)
