package services

import "errors"

var (
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("interview session not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrForbidden          = errors.New("not authorized")
	ErrSessionClosed      = errors.New("interview session is no longer in progress")
	ErrRateLimited        = errors.New("too many answers submitted, slow down")
)
