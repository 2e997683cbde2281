// Package rules implements the reified-rule activator (spec.md §4.7): a
// watcher over `(?r, memberOf, rule, system)` that, on each firing, reads
// a rule's `matches`/`produces`/`nac` quad-template strings, compiles them,
// and installs a second watcher that appends the produce templates under a
// freshly synthesized firing context whenever the match pattern completes.
// Tombstoning (`memberOf rule tombstone`) uninstalls the corresponding
// watcher.
//
// Grounded on inference/inference.go's Store: a quad-driven metadata store
// that reacts to the shape of incoming quads (there, RDFS entailment rules
// over rdf:type/rdfs:subClassOf; here, the match/produces/nac rule-quad
// protocol) rather than on any fixed schema.
package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/engine"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

var (
	memberOfWord  = atom.NewWord("memberOf")
	ruleWord      = atom.NewWord("rule")
	systemCtx     = atom.NewWord("system")
	tombstoneCtx  = atom.NewWord("tombstone")
	matchesWord   = atom.NewWord("matches")
	producesWord  = atom.NewWord("produces")
	nacWord       = atom.NewWord("nac")
	firedWord     = atom.NewWord("FIRED")
	timestampWord = atom.NewWord("TIMESTAMP")
	ruleErrorWord = atom.NewWord("ruleError")
)

// Activator owns the activate/tombstone watchers and the set of
// currently-active rule watchers, keyed by the rule atom's canonical key.
type Activator struct {
	store  *engine.Store
	active map[string]engine.Handle
}

// Install wires an Activator onto s: a watcher that activates a rule on
// `(?r, memberOf, rule, system)` and a second that deactivates it on
// `(?r, memberOf, rule, tombstone)` (spec.md §4.7 step 5).
func Install(s *engine.Store) (*Activator, error) {
	a := &Activator{store: s, active: make(map[string]engine.Handle)}

	activateTmpl := quad.Template{Source: atom.NewPatternVar("r"), Attribute: memberOfWord, Target: ruleWord, Context: systemCtx}
	if _, err := s.WatchTemplates([]quad.Template{activateTmpl}, nil, a.onActivate); err != nil {
		return nil, err
	}

	tombstoneTmpl := quad.Template{Source: atom.NewPatternVar("r"), Attribute: memberOfWord, Target: ruleWord, Context: tombstoneCtx}
	if _, err := s.WatchTemplates([]quad.Template{tombstoneTmpl}, nil, a.onTombstone); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Activator) onActivate(b pattern.Binding, _ []quad.Quad) {
	r, ok := b.Lookup("r")
	if !ok {
		return
	}
	key := atom.KeyOf(r)
	if _, already := a.active[key]; already {
		// spec.md §9 Open Question 4: re-activation is a no-op.
		return
	}
	if err := a.activate(r, key); err != nil {
		_, _ = a.store.Append(r, ruleErrorWord, atom.String(err.Error()), systemCtx)
	}
}

func (a *Activator) onTombstone(b pattern.Binding, _ []quad.Quad) {
	r, ok := b.Lookup("r")
	if !ok {
		return
	}
	key := atom.KeyOf(r)
	if h, ok := a.active[key]; ok {
		_ = a.store.Unwatch(h)
		delete(a.active, key)
	}
}

// activate reads r's matches/produces/nac templates, compiles them,
// installs the match-pattern watcher, and runs the initial scan (spec.md
// §4.7 steps 1-4). On any NacParseError it returns the error without
// installing anything; the caller writes a diagnostic quad.
func (a *Activator) activate(r atom.Value, key string) error {
	matchTemplates, err := a.readTemplateStrings(r, matchesWord)
	if err != nil {
		return err
	}
	nacTemplates, err := a.readTemplateStrings(r, nacWord)
	if err != nil {
		return err
	}
	produceTemplates, err := a.readTemplateStrings(r, producesWord)
	if err != nil {
		return err
	}

	matchP, err := pattern.Compile(matchTemplates, nacTemplates)
	if err != nil {
		return err
	}
	produceP, err := pattern.Compile(produceTemplates, nil)
	if err != nil {
		return err
	}

	cb := a.firingCallback(r, produceP)
	h := a.store.Watch(matchP, cb)
	a.active[key] = h

	// Initial scan: makes the rule order-independent relative to data
	// inserted before activation (spec.md §4.7 step 4, §8 property 2).
	for _, binding := range a.store.Query(matchP) {
		cb(binding, nil)
	}
	return nil
}

// readTemplateStrings queries `(r, attr, ?qstr, *)` and parses every
// resulting String binding as a quad-template string (spec.md §6.3).
func (a *Activator) readTemplateStrings(r atom.Value, attr atom.Value) ([]quad.Template, error) {
	t := quad.Template{Source: r, Attribute: attr, Target: atom.NewPatternVar("qstr"), Context: atom.WC}
	p, err := pattern.Compile([]quad.Template{t}, nil)
	if err != nil {
		return nil, err
	}
	var out []quad.Template
	for _, b := range a.store.Query(p) {
		v, ok := b.Lookup("qstr")
		if !ok {
			continue
		}
		s, ok := v.(atom.String)
		if !ok {
			return nil, fmt.Errorf("rules: %s template on %s must be a string, got %s", attr, r, v.String())
		}
		tmpl, err := quad.ParseTemplateString(string(s))
		if err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// firingCallback builds the callback installed on the match pattern: it
// instantiates every produce template under the completed binding with a
// freshly synthesized firing context, then records the firing itself
// after the produced quads (spec.md §4.7 step 3).
func (a *Activator) firingCallback(r atom.Value, produceP *pattern.Pattern) engine.Callback {
	return func(b pattern.Binding, _ []quad.Quad) {
		firingCtx := atom.NewWord(fmt.Sprintf("%s:F%d:%s", r.String(), time.Now().UnixNano(), uuid.New().String()))

		for _, ct := range produceP.Templates {
			q := pattern.Instantiate(ct, b, firingCtx)
			_, _ = a.store.Append(q.Source, q.Attribute, q.Target, q.Context)
		}
		// Firing records come after the produced quads, so cascading
		// watchers observing a FIRED quad see complete data (spec.md
		// §4.7 step 3).
		_, _ = a.store.Append(r, firedWord, firingCtx, systemCtx)
		_, _ = a.store.Append(firingCtx, timestampWord, atom.NewInt(time.Now().UnixNano()), systemCtx)
		a.store.Metrics().IncRuleFirings()
	}
}
