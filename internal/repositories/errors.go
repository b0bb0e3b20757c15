package repositories

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrOperatorNotFound = errors.New("operator not found")
)
