// Package engine implements the reactive engine (spec.md §4.6): it wires
// the append-only log (qstore), the selective-activation index (index),
// and one partial-match table (match) per installed watcher, so that
// appending a quad drives incremental matching, NAC evaluation, and
// depth-first re-entrant cascades through watcher callbacks.
//
// Grounded on graph/memstore/quadstore.go's ApplyDeltas (precheck-then-
// apply batch shape) and graph/transaction.go's pending-delta-list/atomic-
// commit discipline, generalized from "apply deltas to a quad store" to
// "apply deltas to a quad store, then drive pattern propagation".
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/index"
	"github.com/quadreactor/engine/match"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/qstore"
	"github.com/quadreactor/engine/quad"
)

// Sentinel errors, named by kind per spec.md §7's error taxonomy.
var (
	ErrInvalidAtom    = qstore.ErrInvalidAtom
	ErrInvalidPattern = pattern.ErrInvalidPattern
	ErrBatchAborted   = errors.New("engine: batch aborted")
	ErrUnknownHandle  = errors.New("engine: unknown watcher handle")
)

// CallbackError wraps a fault raised from within a watcher callback
// (spec.md §7 "CallbackFault"), recording which watcher and pattern
// faulted. The triggering quad is already visible by the time this is
// raised; the engine's own state remains consistent because a partial is
// only ever inserted into its table after its match already succeeded.
type CallbackError struct {
	Handle  Handle
	Pattern *pattern.Pattern
	Err     error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("engine: watcher %d callback failed: %v", e.Handle, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Handle identifies an installed watcher; it is the same arena index the
// selective-activation index uses internally (spec.md §9: "watcher ids
// are arena indices").
type Handle = index.WatcherID

// Callback is invoked once per completed, NAC-cleared match, with the
// binding and the ordered quads that produced it (spec.md §3.4).
type Callback func(b pattern.Binding, quads []quad.Quad)

type watcherEntry struct {
	id      Handle
	seq     uint64
	pattern *pattern.Pattern
	table   *match.Table
	cb      Callback
}

// WatcherInfo is read-only introspection about an installed watcher
// (SPEC_FULL.md §4: "a watch-handle registry with introspection").
type WatcherInfo struct {
	Handle        Handle
	InstallOrder  uint64
	TemplateCount int
	NACCount      int
}

// Metrics receives notable engine events. internal/metrics implements this
// against Prometheus collectors; the zero value used by New (noopMetrics)
// makes metrics an optional, ambient concern rather than a hard dependency.
type Metrics interface {
	IncAppends()
	ObserveCandidateSetSize(n int)
	ObserveCascadeDepth(n int)
	IncRuleFirings()
}

type noopMetrics struct{}

func (noopMetrics) IncAppends()                 {}
func (noopMetrics) ObserveCandidateSetSize(int) {}
func (noopMetrics) ObserveCascadeDepth(int)     {}
func (noopMetrics) IncRuleFirings()             {}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMetrics wires m to observe append/cascade/firing events
// (SPEC_FULL.md §3.1).
func WithMetrics(m Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Store is the reactive engine: the quad log, the selective-activation
// index, and the per-watcher partial-match tables.
//
// Store holds no mutex of its own. spec.md §5 declares the scheduling
// model single-threaded and cooperative ("no locking discipline is
// mandated here because the single-threaded model makes it unnecessary");
// callers serialize Append/Watch/Unwatch/Batch themselves, directly or by
// re-entering through a callback, which Store supports via cascadeDepth.
type Store struct {
	log      *qstore.Log
	idx      *index.Index
	watchers map[Handle]*watcherEntry
	nextID   Handle
	seq      uint64

	cascadeDepth    int
	cascadeMaxDepth int
	metrics         Metrics
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		log:      qstore.NewLog(),
		idx:      index.New(),
		watchers: make(map[Handle]*watcherEntry),
		metrics:  noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch installs p with callback cb and enrolls it in the
// selective-activation index. It does not fire retroactively for quads
// already in the store (spec.md §8 boundary behaviour) — run Query right
// after Watch if that is what's wanted, which is exactly what the
// reified-rule activator's initial scan does.
func (s *Store) Watch(p *pattern.Pattern, cb Callback) Handle {
	id := s.nextID
	s.nextID++
	s.seq++
	we := &watcherEntry{id: id, seq: s.seq, pattern: p, table: match.NewTable(p), cb: cb}
	s.watchers[id] = we
	s.idx.Enroll(id, p)
	return id
}

// WatchTemplates compiles templates/nac into a Pattern and installs it,
// surfacing ErrInvalidPattern on a malformed template (spec.md §4.8).
func (s *Store) WatchTemplates(templates, nac []quad.Template, cb Callback) (Handle, error) {
	p, err := pattern.Compile(templates, nac)
	if err != nil {
		return 0, err
	}
	return s.Watch(p, cb), nil
}

// Unwatch removes the watcher's index enrollment and partial-match state.
func (s *Store) Unwatch(h Handle) error {
	if _, ok := s.watchers[h]; !ok {
		return ErrUnknownHandle
	}
	s.idx.Uninstall(h)
	delete(s.watchers, h)
	return nil
}

// Watchers returns install-order metadata for every currently-installed
// watcher (SPEC_FULL.md §4).
func (s *Store) Watchers() []WatcherInfo {
	out := make([]WatcherInfo, 0, len(s.watchers))
	for _, we := range s.watchers {
		out = append(out, WatcherInfo{
			Handle:        we.id,
			InstallOrder:  we.seq,
			TemplateCount: len(we.pattern.Templates),
			NACCount:      len(we.pattern.NAC),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallOrder < out[j].InstallOrder })
	return out
}

// Log exposes the underlying append-only log, for edges_in_context,
// list_contexts, and Dump/Load (spec.md §4.1, SPEC_FULL.md §4).
func (s *Store) Log() *qstore.Log { return s.log }

// Metrics exposes the Store's metrics sink, so collaborators installed
// against a Store (package rules, notably) can record their own events
// through the same collectors Store uses for appends and cascades.
func (s *Store) Metrics() Metrics { return s.metrics }

// Append stores (src, attr, tgt, ctx) and, outside a batch, propagates it
// and any cascaded quads through to completion before returning (spec.md
// §4.6, §5's "callbacks run to completion before any subsequent top-level
// append" guarantee, which this call stack gives for free: Append does not
// return until propagate's recursive descent has unwound).
func (s *Store) Append(src, attr, tgt, ctx atom.Value) (atom.Value, error) {
	q, c, isNew, err := s.log.AppendDetailed(quad.Quad{Source: src, Attribute: attr, Target: tgt, Context: ctx})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAppends()
	if !isNew || s.log.InBatch() {
		// Deduped, or staged inside an open batch: no propagation
		// (spec.md §4.1 step 3 returns before forwarding to the engine).
		return c, nil
	}
	if err := s.propagate(q); err != nil {
		return c, err
	}
	return c, nil
}

// propagate runs q through every candidate watcher's partial-match table,
// in install order, recursing into further Append calls a callback makes
// before returning (spec.md §4.6 steps 1-3, re-entrant and depth-first).
func (s *Store) propagate(q quad.Quad) error {
	s.cascadeDepth++
	if s.cascadeDepth > s.cascadeMaxDepth {
		s.cascadeMaxDepth = s.cascadeDepth
	}
	defer func() {
		if s.cascadeDepth == 1 {
			s.metrics.ObserveCascadeDepth(s.cascadeMaxDepth)
			s.cascadeMaxDepth = 0
		}
		s.cascadeDepth--
	}()

	candidates := s.idx.Candidates(q)
	s.metrics.ObserveCandidateSetSize(len(candidates))

	ordered := make([]*watcherEntry, 0, len(candidates))
	for _, id := range candidates {
		if we, ok := s.watchers[id]; ok {
			ordered = append(ordered, we)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	for _, we := range ordered {
		completions := we.table.Advance(q, s.nacWitness)
		for _, c := range completions {
			if err := s.invoke(we, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) invoke(we *watcherEntry, c match.Completion) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{Handle: we.id, Pattern: we.pattern, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	we.cb(c.Binding, c.Quads)
	return nil
}

// nacWitness scans every committed quad for one that witnesses ct under b,
// the existential store-lookup spec.md §4.4 step 3 requires of NAC
// evaluation. It is a linear scan, matching qstore's own documented
// introspection-not-hot-path cost for non-indexed lookups.
func (s *Store) nacWitness(ct pattern.CompiledTemplate, b pattern.Binding) bool {
	for _, q := range s.log.All() {
		if pattern.MatchNAC(ct, q, b) {
			return true
		}
	}
	return false
}

// Batch runs body with propagation suppressed; on success every staged
// quad becomes visible atomically, in declaration order, and is then
// propagated in that same order (spec.md §4.1). On error, the batch is
// discarded and the id counter rewound, and the returned error wraps
// ErrBatchAborted (checkable with errors.Is) around body's error.
func (s *Store) Batch(body func() error) error {
	if err := s.log.BeginBatch(); err != nil {
		return err
	}
	marks := make(map[Handle]int, len(s.watchers))
	for id, we := range s.watchers {
		marks[id] = we.table.Mark()
	}

	if bodyErr := body(); bodyErr != nil {
		_ = s.log.AbortBatch()
		// Defensive: propagation never runs during an open batch, so no
		// table actually grew, but Rollback keeps the invariant explicit
		// (spec.md §8 property 5) rather than implicit in control flow.
		for id, we := range s.watchers {
			if mark, ok := marks[id]; ok {
				we.table.Rollback(mark)
			}
		}
		return fmt.Errorf("%w: %v", ErrBatchAborted, bodyErr)
	}

	committed, err := s.log.CommitBatch()
	if err != nil {
		return err
	}
	for _, q := range committed {
		if err := s.propagate(q); err != nil {
			return err
		}
	}
	return nil
}

// Query evaluates p against every quad currently in the store: an install-
// replay-uninstall collapsed into one pass, since a one-shot table never
// needs to outlive this call (spec.md §4.5).
func (s *Store) Query(p *pattern.Pattern) []pattern.Binding {
	tbl := match.NewTable(p)
	var out []pattern.Binding
	if c, ok := tbl.InitialCompletion(s.nacWitness); ok {
		out = append(out, c.Binding)
	}
	for _, q := range s.log.All() {
		for _, c := range tbl.Advance(q, s.nacWitness) {
			out = append(out, c.Binding)
		}
	}
	return out
}
