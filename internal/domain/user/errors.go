package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user account is inactive")
	ErrInvalidRole  = errors.New("invalid user role")
)
