package atom

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// internTable deduplicates canonical Word/PatternVar strings so that
// repeated construction of the same symbol shares one backing string and,
// in the common case, one hash bucket lookup instead of a fresh compare.
// Grounded on the teacher's quad.HashOf sync.Pool-of-hashers idiom (quad/value.go),
// adapted here to hash the intern key with xxhash instead of sha1: the
// intern table is a hot path on every append/pattern-compile, and a fast
// non-cryptographic hash is the right tool once the output need not be a
// stable content address.
type internTable struct {
	mu     sync.RWMutex
	values map[uint64][]string
}

var globalIntern = &internTable{values: make(map[uint64][]string)}

func intern(s string) string {
	if s == "" {
		return ""
	}
	h := xxhash.Sum64String(s)

	globalIntern.mu.RLock()
	for _, existing := range globalIntern.values[h] {
		if existing == s {
			globalIntern.mu.RUnlock()
			return existing
		}
	}
	globalIntern.mu.RUnlock()

	globalIntern.mu.Lock()
	defer globalIntern.mu.Unlock()
	for _, existing := range globalIntern.values[h] {
		if existing == s {
			return existing
		}
	}
	globalIntern.values[h] = append(globalIntern.values[h], s)
	return s
}
