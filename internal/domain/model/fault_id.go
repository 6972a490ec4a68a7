package model

import (
	"errors"

	"github.com/oklog/ulid/v2"
)

// FaultID identifies a single fault occurrence.
// ULIDs keep the fault log sortable by creation time.
type FaultID struct {
	value string
}

// NewFaultID creates a new FaultID
func NewFaultID() FaultID {
	return FaultID{value: ulid.Make().String()}
}

// NewFaultIDFromString creates a FaultID from an existing string
func NewFaultIDFromString(id string) (FaultID, error) {
	if id == "" {
		return FaultID{}, errors.New("fault ID cannot be empty")
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return FaultID{}, err
	}
	return FaultID{value: id}, nil
}

// String returns the string representation
func (f FaultID) String() string {
	return f.value
}

// Equals checks if two FaultIDs are equal
func (f FaultID) Equals(other FaultID) bool {
	return f.value == other.value
}
