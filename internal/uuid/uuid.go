// Package uuid issues contest record identifiers behind a small interface
// so tests can pin them.
package uuid

import "github.com/google/uuid"

// Generator produces unique record identifiers
type Generator interface {
	New() string
}

type googleGenerator struct{}

// NewGoogleUUIDGenerator returns a Generator backed by google/uuid v4 IDs
func NewGoogleUUIDGenerator() Generator {
	return googleGenerator{}
}

func (googleGenerator) New() string {
	return uuid.NewString()
}
