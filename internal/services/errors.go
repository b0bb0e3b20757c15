package services

import (
	"errors"

	"inventory/internal/repositories"
)

var (
	// ErrProductNotFound is the repository sentinel so errors.Is matches across layers.
	ErrProductNotFound       = repositories.ErrProductNotFound
	ErrDuplicateName         = errors.New("a non-voided product with this name already exists")
	ErrInsufficientInventory = errors.New("not enough inventory")
	ErrInvalidQuantity       = errors.New("quantity must not be negative")
	ErrQuantityOverflow      = errors.New("resulting quantity is too large")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
