package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	AssessmentID ID
	StandardID   ID
)

// NewAssessmentID creates a fresh assessment identifier
func NewAssessmentID() AssessmentID {
	return AssessmentID(NewID())
}

// String conversions for domain IDs
func (id AssessmentID) String() string { return ID(id).String() }
func (id StandardID) String() string   { return ID(id).String() }

// ParseStandardID parses a string into StandardID
func ParseStandardID(s string) (StandardID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("standard ID cannot be empty")
	}
	return StandardID(s), nil
}
