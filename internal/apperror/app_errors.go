package apperror

import "errors"

var (
	ErrEmptyPlayerName = errors.New("player name is required")
	ErrNotEnoughIcons  = errors.New("at least two distinct icons are required")
	ErrDuplicateIcon   = errors.New("icon identifiers must be distinct")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)
