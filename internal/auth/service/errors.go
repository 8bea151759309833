package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidOldPassword  = errors.New("current password is incorrect")
	ErrInvalidRole         = errors.New("unknown role")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("forbidden")
)
