// Package match implements the partial-match engine (spec.md §4.4): the
// per-watcher arena of in-progress joins that is extended incrementally as
// quads are appended, without ever removing a partial once created, so a
// single partial can go on to extend along multiple future paths.
//
// Grounded on spec.md §9's arena advice ("use an arena of partials indexed
// by integer ids; partial keys are pairs (parent_id_or_sentinel, quad_id)")
// and, in shape, on graph/iterator/and.go's incremental-intersection walk
// (teacher) — here the "iterator" state is a table of partials advanced one
// quad at a time instead of a single linear iterator protocol.
package match

import (
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

// Partial is one in-progress join: how much of the pattern it has
// satisfied, the binding accumulated so far, and the quads that produced
// it, in template order.
type Partial struct {
	TemplateIndex int
	Binding       pattern.Binding
	MatchedQuads  []quad.Quad
}

// Completion is a partial that has satisfied every match template, prior
// to its NAC check.
type Completion struct {
	Binding pattern.Binding
	Quads   []quad.Quad
}

// NACChecker reports whether some stored quad witnesses ct under b in the
// existential sense of spec.md §4.4 step 3. The match package has no
// notion of a quad store; the caller (package engine) supplies this so a
// NAC check can scan whatever quads are currently committed.
type NACChecker func(ct pattern.CompiledTemplate, b pattern.Binding) bool

// Table is one watcher's partial-match arena. Partials are never removed
// except by Rollback, so a partial already matched against one quad
// remains eligible to match a different future quad against the same next
// template (spec.md §8 property 6, "partial preservation").
type Table struct {
	pat      *pattern.Pattern
	partials []Partial
}

// NewTable constructs an empty arena for pat.
func NewTable(pat *pattern.Pattern) *Table {
	return &Table{pat: pat}
}

// Len returns the number of partials currently held, including completed
// ones (this baseline does not prune completed partials from the arena;
// spec.md §4.4 notes "complete" state may be kept only as a count, but
// retaining them here costs nothing and simplifies Rollback/Mark).
func (t *Table) Len() int { return len(t.partials) }

// Mark returns a snapshot point usable with Rollback, for batch-abort
// (spec.md §8 property 5: partial tables must be bit-identical to their
// pre-batch state after an aborted batch).
func (t *Table) Mark() int { return len(t.partials) }

// Rollback discards every partial created since mark.
func (t *Table) Rollback(mark int) {
	t.partials = t.partials[:mark]
}

// InitialCompletion handles the zero-template boundary case (spec.md §8:
// "Pattern of length 0 yields one completion with the empty binding and
// empty quad list"; a NAC-only pattern is the same case with the NAC
// possibly suppressing it). It is not evaluated per appended quad: engine's
// Store.Query calls it once per query, and Store.Watch does not call it, so
// a watcher on a zero-template pattern never fires.
func (t *Table) InitialCompletion(nac NACChecker) (Completion, bool) {
	if len(t.pat.Templates) != 0 {
		return Completion{}, false
	}
	b := pattern.Binding{}
	if t.nacFires(b, nac) {
		return Completion{}, false
	}
	return Completion{Binding: b}, true
}

// Advance tries to extend every partial already in the arena against q,
// and tries to start a fresh partial from template 0 against q (spec.md
// §4.4 steps 1-2). Every successful extension/start is kept; none of this
// call's new partials are themselves re-examined within the same call, so
// a single quad advances each existing partial by at most one template.
// It returns completions (post-NAC-check) in the tie-break order spec.md
// §4.4 point 4 requires: processing existing partials before the fresh
// start, in the order they were created.
func (t *Table) Advance(q quad.Quad, nac NACChecker) []Completion {
	existing := t.partials
	snapshot := len(existing)

	var completions []Completion
	tryFrom := func(base Partial) {
		ct := t.pat.Templates[base.TemplateIndex]
		b, ok := pattern.MatchTemplate(ct, q, base.Binding)
		if !ok {
			return
		}
		matched := make([]quad.Quad, len(base.MatchedQuads), len(base.MatchedQuads)+1)
		copy(matched, base.MatchedQuads)
		matched = append(matched, q)

		next := base.TemplateIndex + 1
		t.partials = append(t.partials, Partial{TemplateIndex: next, Binding: b, MatchedQuads: matched})

		if next == len(t.pat.Templates) {
			if !t.nacFires(b, nac) {
				completions = append(completions, Completion{Binding: b, Quads: matched})
			}
		}
	}

	for i := 0; i < snapshot; i++ {
		if t.partials[i].TemplateIndex >= len(t.pat.Templates) {
			continue // already complete; no further template to satisfy
		}
		tryFrom(t.partials[i])
	}
	if len(t.pat.Templates) > 0 {
		tryFrom(Partial{TemplateIndex: 0})
	}
	return completions
}

func (t *Table) nacFires(b pattern.Binding, nac NACChecker) bool {
	if nac == nil {
		return false
	}
	for _, ct := range t.pat.NAC {
		if nac(ct, b) {
			return true
		}
	}
	return false
}
