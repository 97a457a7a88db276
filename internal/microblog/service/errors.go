package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("password must be between 8 and 128 characters")
	ErrInvalidAboutMe     = errors.New("about me must be at most 140 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidPost        = errors.New("post must be between 1 and 140 characters")
	ErrInvalidLanguage    = errors.New("language code must be at most 5 characters")
)
