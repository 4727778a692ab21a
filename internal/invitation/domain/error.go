package domain

import "errors"

var (
	ErrNotFound     = errors.New("invitation_not_found")
	ErrConflict     = errors.New("invitation_conflict")
	ErrExpired      = errors.New("invitation_expired")
	ErrInvalidEmail = errors.New("invalid_invitation_email")
	ErrInvalidRole  = errors.New("invalid_invitation_role")
)
