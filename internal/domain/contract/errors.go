package contract

import "errors"

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrNoContract       = errors.New("carrier has no signed contract")
	ErrContractExpired  = errors.New("carrier contract has expired")
	ErrAlreadySigned    = errors.New("contract already signed")
)
