package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Standard resolution errors
	ErrStandardNotFound     = errors.New("standard not found")
	ErrInvalidStandard      = errors.New("invalid standard")
	ErrStandardsDirNotFound = errors.New("bundled standards directory not found")

	// Configuration errors
	ErrConfigNotFound = errors.New("configuration not found")
	ErrConfigInvalid  = errors.New("configuration invalid")

	// Protection errors (quality breaches, missing data param, generation failure)
	ErrProtection = errors.New("protection error")

	// Structural data errors - malformed input, not quality failures
	ErrDataValidation = errors.New("data validation error")
)

// Error constructors with context
func NewStandardNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrStandardNotFound, name)
}

func NewInvalidStandardError(name string, reason string) error {
	if name == "" {
		return fmt.Errorf("%w: %s", ErrInvalidStandard, reason)
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidStandard, name, reason)
}

func NewProtectionError(reason string) error {
	return fmt.Errorf("%w: %s", ErrProtection, reason)
}

func NewDataValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDataValidation, reason)
}

// Error checking helpers
func IsStandardNotFound(err error) bool {
	return errors.Is(err, ErrStandardNotFound)
}

func IsInvalidStandard(err error) bool {
	return errors.Is(err, ErrInvalidStandard)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrConfigInvalid)
}

func IsProtectionError(err error) bool {
	return errors.Is(err, ErrProtection)
}
