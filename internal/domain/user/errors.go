package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidUsername    = errors.New("username contains forbidden characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoAvatar           = errors.New("user has no avatar")
)
