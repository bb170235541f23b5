package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrTeamKeyRequired  = errors.New("team key is required")
	ErrCoefficientPair  = errors.New("complementary coefficients must sum to 1")
	ErrCoefficientRange = errors.New("coefficient out of range")
)
