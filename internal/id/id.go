// Package id generates the opaque string identifiers used for every
// persisted record.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record kinds this module persists.
const (
	PrefixContent = "content"
	PrefixTag     = "tag"
)

// Generate creates an identifier of the form prefix-nanoid,
// e.g. "content-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	n, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + n, nil
}

// MustGenerate is like Generate but panics if generation fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// NewContentID returns a fresh content identifier.
func NewContentID() (string, error) { return Generate(PrefixContent) }

// NewTagID returns a fresh tag identifier.
func NewTagID() (string, error) { return Generate(PrefixTag) }

// HasPrefix reports whether v was generated with the given prefix.
func HasPrefix(v, prefix string) bool {
	return strings.HasPrefix(v, prefix+"-") && len(v) > len(prefix)+1
}
