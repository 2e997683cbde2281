package pattern

import (
	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/quad"
)

// MatchTemplate attempts to match q against ct under binding b, following
// spec.md §4.4 step 1's per-position rule: a literal position requires
// atom-equality with q; a bound PatternVar requires equality with its
// bound value; an unbound PatternVar extends the binding; Wildcard always
// accepts. It returns the (possibly extended) binding and whether the
// match succeeded.
func MatchTemplate(ct CompiledTemplate, q quad.Quad, b Binding) (Binding, bool) {
	cur := b
	for _, d := range quad.Directions {
		v := ct.Template.Get(d)
		qv := q.Get(d)
		switch ct.kindAt(d) {
		case fieldWildcard:
			// accept unconditionally
		case fieldLiteral:
			if !v.Equal(qv) {
				return Binding{}, false
			}
		case fieldVar:
			name := v.(atom.PatternVar).Name()
			var ok bool
			cur, ok = cur.Extend(name, qv)
			if !ok {
				return Binding{}, false
			}
		}
	}
	return cur, true
}

// MatchNAC reports whether q witnesses ct under binding b in the
// existential sense spec.md §4.4 step 3 requires for NAC evaluation: a
// literal position must equal q's; a bound PatternVar must equal its bound
// value; an unbound PatternVar or Wildcard accepts any value at that
// position without extending b. Unlike MatchTemplate, a successful witness
// never grows the binding, since a NAC only asks "does such a quad exist".
func MatchNAC(ct CompiledTemplate, q quad.Quad, b Binding) bool {
	for _, d := range quad.Directions {
		v := ct.Template.Get(d)
		qv := q.Get(d)
		switch ct.kindAt(d) {
		case fieldWildcard:
			// accept unconditionally
		case fieldLiteral:
			if !v.Equal(qv) {
				return false
			}
		case fieldVar:
			name := v.(atom.PatternVar).Name()
			if bound, ok := b.Lookup(name); ok && !bound.Equal(qv) {
				return false
			}
		}
	}
	return true
}

// Instantiate resolves ct into a concrete quad.Quad under binding b, with
// the Context position always set to ctx: produce templates (spec.md
// §4.7 step 3) are appended under a freshly synthesized per-firing context
// regardless of what the produce template's own context field said, so
// that field is ignored here. Instantiate panics if any PatternVar in ct
// is unbound in b, since produce templates are only ever derived from a
// completed match's binding.
func Instantiate(ct CompiledTemplate, b Binding, ctx atom.Value) quad.Quad {
	var q quad.Quad
	for _, d := range quad.Directions {
		if d == quad.Context {
			continue
		}
		v := ct.Template.Get(d)
		if ct.kindAt(d) == fieldVar {
			bound, ok := b.Lookup(v.(atom.PatternVar).Name())
			if !ok {
				panic("pattern: produce template references unbound variable " + v.String())
			}
			v = bound
		}
		q = q.Set(d, v)
	}
	q = q.Set(quad.Context, ctx)
	return q
}
