package core

import "github.com/google/uuid"

// IDGenerator produces unique expense identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random (v4) UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// IDFunc adapts a plain function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }
