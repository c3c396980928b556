package parcel

import "errors"

var (
	ErrParcelNotFound          = errors.New("parcel not found")
	ErrParcelAlreadyExists     = errors.New("parcel already exists")
	ErrInvalidStatus           = errors.New("invalid parcel status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrParcelTerminal          = errors.New("parcel is in a terminal status")
	ErrDuplicateTracking       = errors.New("tracking number already issued")
)
