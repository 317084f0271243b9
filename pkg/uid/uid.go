// Package uid wraps UUID generation behind the two operations the toolkit
// needs: minting request IDs and vetting client-supplied ones.
package uid

import "github.com/google/uuid"

// New returns a fresh UUID string.
func New() string {
	return uuid.New().String()
}

// IsValid reports whether id parses as a UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
