// Package idgen generates sortable, unique identifiers for every stored
// entity in netopscore. IDs are ULIDs: 26-character, lexicographically
// time-sortable, and collision-resistant without a central sequence.
package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID timestamped at the current time.
func New() ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// NewString returns a fresh ULID as its 26-character string form.
func NewString() string {
	return New().String()
}

// IsValid reports whether s is a syntactically valid ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// MustParse parses s as a ULID, panicking if s is malformed. Use only
// for values already validated (e.g. round-tripped from storage).
func MustParse(s string) ulid.ULID {
	return ulid.MustParse(s)
}
