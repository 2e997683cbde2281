// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package qstore implements the append-only quad log (spec.md §4.1): a
// dense, strictly-increasing id sequence with dedup and batch/rollback
// semantics. It knows nothing about patterns or watchers; the engine
// package (§4.6) drives propagation after a Log.Append or Log.CommitBatch call.
//
// Grounded on graph/memstore/quadstore.go's vals/quads/prim map triad
// (teacher) for dedup-by-content and id assignment, and on
// graph/transaction.go's pending-delta-list-then-atomic-commit shape for
// batching.
package qstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/quad"
)

// ErrInvalidAtom is returned by Append when any of the four fields is a
// PatternVar or Wildcard (spec.md §4.1 step 1, §7).
var ErrInvalidAtom = errors.New("qstore: PatternVar or Wildcard is not a valid stored atom")

// ErrBatchInProgress is returned by BeginBatch if a batch is already open.
var ErrBatchInProgress = errors.New("qstore: a batch is already in progress")

// ErrNoActiveBatch is returned by AbortBatch/CommitBatch without a BeginBatch.
var ErrNoActiveBatch = errors.New("qstore: no batch in progress")

// Log is the append-only quad log.
type Log struct {
	mu sync.Mutex

	quads  []quad.Quad         // committed, in id order
	dedup  map[string][]int64  // coarse bucket key -> committed ids
	nextID int64

	batch *batchState
}

type batchState struct {
	startID int64
	pending []quad.Quad // staged, in declaration order, ids already assigned
}

// NewLog constructs an empty Log.
func NewLog() *Log {
	return &Log{dedup: make(map[string][]int64)}
}

// Append validates q, synthesizes a context if absent, dedups against the
// log (including anything already staged in the current batch), assigns an
// id if new, and stores it. It returns the quad's context atom (its
// user-facing handle) whether or not this call actually added a new quad.
//
// Append does not propagate to watchers; that is the engine's job once it
// knows whether a batch is open.
func (l *Log) Append(q quad.Quad) (atom.Value, error) {
	_, ctx, _, err := l.AppendDetailed(q)
	return ctx, err
}

// AppendDetailed is Append's full-detail form: besides the context handle,
// it reports the stored quad (with its id filled in) and whether this call
// actually added a new quad rather than hitting the dedup index. The
// engine package uses isNew to decide whether to propagate at all — a
// deduped append must not re-trigger watchers (spec.md §4.1 step 3 returns
// before the steps that would forward to the Reactive Engine).
func (l *Log) AppendDetailed(q quad.Quad) (stored quad.Quad, ctx atom.Value, isNew bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(q)
}

func (l *Log) appendLocked(q quad.Quad) (quad.Quad, atom.Value, bool, error) {
	if q.HasPatternOnlyAtom() {
		return quad.Quad{}, nil, false, ErrInvalidAtom
	}

	if q.Context == nil {
		// A contextless append of a fact already stored under its own
		// auto-generated context (edge:<its id>) resolves to that quad.
		var staged []quad.Quad
		if l.batch != nil {
			staged = l.batch.pending
		}
		for _, group := range [][]quad.Quad{l.quads, staged} {
			for _, e := range group {
				if e.Source.Equal(q.Source) && e.Attribute.Equal(q.Attribute) && e.Target.Equal(q.Target) &&
					e.Context.Equal(atom.NewWord(fmt.Sprintf("edge:%d", e.Id))) {
					return e, e.Context, false, nil
				}
			}
		}
		q.Context = atom.NewWord(fmt.Sprintf("edge:%d", l.peekNextID()))
	}

	if existing, ok := l.findExistingLocked(q); ok {
		return existing, existing.Context, false, nil
	}

	q.Id = l.nextID
	l.nextID++

	if l.batch != nil {
		l.batch.pending = append(l.batch.pending, q)
	} else {
		l.quads = append(l.quads, q)
		l.index(q)
	}
	return q, q.Context, true, nil
}

// peekNextID returns the id that would be assigned to the next quad,
// whether or not a batch is open, so that auto-generated contexts
// (edge:<id>) stay unique even for quads staged inside a batch.
func (l *Log) peekNextID() int64 {
	return l.nextID
}

func (l *Log) index(q quad.Quad) {
	key := bucketKey(q)
	l.dedup[key] = append(l.dedup[key], q.Id)
}

func (l *Log) findExistingLocked(q quad.Quad) (quad.Quad, bool) {
	key := bucketKey(q)
	for _, id := range l.dedup[key] {
		if existing, ok := l.byIDLocked(id); ok && existing.EqualIdentity(q) {
			return existing, true
		}
	}
	if l.batch != nil {
		for _, existing := range l.batch.pending {
			if bucketKey(existing) == key && existing.EqualIdentity(q) {
				return existing, true
			}
		}
	}
	return quad.Quad{}, false
}

func (l *Log) byIDLocked(id int64) (quad.Quad, bool) {
	// quads is dense and in id order starting at 0.
	if id < 0 || id >= int64(len(l.quads)) {
		return quad.Quad{}, false
	}
	q := l.quads[id]
	if q.Id != id {
		return quad.Quad{}, false
	}
	return q, true
}

// bucketKey is a coarse, collision-tolerant hint used to narrow the dedup
// scan; true identity is always decided by Quad.EqualIdentity, which
// handles NaN (never equal to itself, even within the same bucket)
// correctly regardless of this key's granularity.
func bucketKey(q quad.Quad) string {
	return atom.KeyOf(q.Source) + "\x00" + atom.KeyOf(q.Attribute) + "\x00" + atom.KeyOf(q.Target) + "\x00" + atom.KeyOf(q.Context)
}

// BeginBatch opens a batch: subsequent Append calls stage quads without
// making them visible in EdgesInContext/ListContexts/dedup-for-outsiders
// until CommitBatch. Only one batch may be open at a time (spec.md does not
// describe nested batches).
func (l *Log) BeginBatch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.batch != nil {
		return ErrBatchInProgress
	}
	l.batch = &batchState{startID: l.nextID}
	return nil
}

// InBatch reports whether a batch is currently open.
func (l *Log) InBatch() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batch != nil
}

// CommitBatch makes every staged quad visible atomically, in declaration
// (id) order, and returns that list so the caller (engine) can propagate
// each one in turn.
func (l *Log) CommitBatch() ([]quad.Quad, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.batch == nil {
		return nil, ErrNoActiveBatch
	}
	pending := l.batch.pending
	for _, q := range pending {
		l.quads = append(l.quads, q)
		l.index(q)
	}
	l.batch = nil
	return pending, nil
}

// AbortBatch discards every staged quad and rewinds the id counter to its
// pre-batch value, so that the log, dedup index and next id are bit
// identical to their pre-batch state (spec.md §4.1, §8 property 5).
func (l *Log) AbortBatch() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.batch == nil {
		return ErrNoActiveBatch
	}
	l.nextID = l.batch.startID
	l.batch = nil
	return nil
}

// Len returns the number of committed quads.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.quads)
}

// NextID returns the id that will be assigned to the next newly-appended
// quad (committed or staged).
func (l *Log) NextID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

// All returns a snapshot of every committed quad, in id order.
func (l *Log) All() []quad.Quad {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]quad.Quad, len(l.quads))
	copy(out, l.quads)
	return out
}

// EdgesInContext returns every quad whose Context equals c, via a linear
// scan (spec.md §4.1: "acceptable: introspection, not hot path").
func (l *Log) EdgesInContext(c atom.Value) []quad.Quad {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []quad.Quad
	for _, q := range l.quads {
		if q.Context.Equal(c) {
			out = append(out, q)
		}
	}
	return out
}

// ListContexts returns every distinct context atom appearing in the log,
// via a linear scan.
func (l *Log) ListContexts() []atom.Value {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[string]atom.Value)
	var order []string
	for _, q := range l.quads {
		k := atom.KeyOf(q.Context)
		if _, ok := seen[k]; !ok {
			seen[k] = q.Context
			order = append(order, k)
		}
	}
	out := make([]atom.Value, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}
