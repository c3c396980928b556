package relay

import "errors"

var (
	ErrCheckpointNotFound    = errors.New("relay checkpoint not found")
	ErrCodeMismatch          = errors.New("transfer code does not match")
	ErrWrongCarrier          = errors.New("carrier is not the designated next carrier")
	ErrAlreadyConfirmed      = errors.New("checkpoint already confirmed")
	ErrNoOpenCheckpoint      = errors.New("parcel has no open checkpoint")
	ErrDuplicateTransferCode = errors.New("transfer code already used for this parcel")
)
