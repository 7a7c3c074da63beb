package entities

import "errors"

var (
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidRole      = errors.New("invalid role")
	ErrInvalidTitle     = errors.New("invalid session title")
	ErrUnknownResource  = errors.New("resource does not belong to session")
	ErrSessionNotActive = errors.New("session is not active")
)
