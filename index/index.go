// Package index implements the selective-activation index (spec.md §4.3):
// for each installed watcher, pick exactly one of source/attribute/target/
// context — whichever is the first, in that priority order, to have a
// non-empty literal-summary set — and enroll the watcher under every
// literal in that set at that position. Watchers whose pattern is pure
// variables/wildcards land in a single catch-all wildcard set instead.
//
// Grounded on graph/memstore/quadstore.go's QuadDirectionIndex, which maps
// (direction, value id) -> a tree of quad ids; here the same per-direction
// map-of-literal-to-set shape indexes watcher ids by pattern literals
// instead of indexing quads by stored values.
package index

import (
	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

// WatcherID identifies an installed watcher; the engine package owns the
// actual watcher registry and treats this as an opaque arena index
// (spec.md §9: "watcher ids are arena indices").
type WatcherID uint64

// Index is the selective-activation index.
type Index struct {
	byPosition [4]map[string]map[WatcherID]struct{} // keyed by quad.Direction
	wildcard   map[WatcherID]struct{}
	location   map[WatcherID]enrollment
}

type enrollment struct {
	dir      quad.Direction
	wildcard bool
	keys     []string
}

// New constructs an empty Index.
func New() *Index {
	idx := &Index{wildcard: make(map[WatcherID]struct{}), location: make(map[WatcherID]enrollment)}
	for i := range idx.byPosition {
		idx.byPosition[i] = make(map[string]map[WatcherID]struct{})
	}
	return idx
}

// Enroll chooses the watcher's indexing position per the source > attribute
// > target > context > wildcard-set priority and registers id there.
func (idx *Index) Enroll(id WatcherID, p *pattern.Pattern) {
	for _, d := range quad.Directions {
		lits := p.Literals[d]
		if len(lits) == 0 {
			continue
		}
		keys := make([]string, 0, len(lits))
		for k, v := range lits {
			keys = append(keys, k)
			bucket, ok := idx.byPosition[d][k]
			if !ok {
				bucket = make(map[WatcherID]struct{})
				idx.byPosition[d][k] = bucket
			}
			bucket[id] = struct{}{}
			_ = v
		}
		idx.location[id] = enrollment{dir: d, keys: keys}
		return
	}
	// All four positions are empty: pure variables/wildcards.
	idx.wildcard[id] = struct{}{}
	idx.location[id] = enrollment{wildcard: true}
}

// Uninstall removes id from every position it occupies and the wildcard
// set, deleting now-empty entries.
func (idx *Index) Uninstall(id WatcherID) {
	loc, ok := idx.location[id]
	if !ok {
		return
	}
	if loc.wildcard {
		delete(idx.wildcard, id)
	} else {
		bucketsByKey := idx.byPosition[loc.dir]
		for _, k := range loc.keys {
			if bucket, ok := bucketsByKey[k]; ok {
				delete(bucket, id)
				if len(bucket) == 0 {
					delete(bucketsByKey, k)
				}
			}
		}
	}
	delete(idx.location, id)
}

// Candidates returns the deduplicated union of watchers that might match q:
// the entries for q's value at each of the four positions, plus the
// wildcard set (spec.md §4.3).
func (idx *Index) Candidates(q quad.Quad) []WatcherID {
	seen := make(map[WatcherID]struct{})
	var out []WatcherID
	add := func(bucket map[WatcherID]struct{}) {
		for id := range bucket {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, d := range quad.Directions {
		v := q.Get(d)
		add(idx.byPosition[d][atom.KeyOf(v)])
	}
	add(idx.wildcard)
	return out
}
