package domain

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUserNotFound   = errors.New("user_not_found")
	ErrUserExists     = errors.New("user_already_exists")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidRole    = errors.New("invalid_role")
	ErrInvalidKeyName = errors.New("invalid_key_name")
)
