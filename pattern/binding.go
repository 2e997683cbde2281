package pattern

import "github.com/quadreactor/engine/atom"

// Binding is an immutable map from PatternVar name to atom. Extending with
// a value for an already-bound variable fails if the existing value is not
// Equal, per spec.md §3.4. The zero Binding is empty and valid.
//
// Grounded on spec.md §9's advice ("small persistent maps... are faster
// than hash maps" for |vars| <= 8): Binding is a copy-on-write slice of
// pairs rather than a map, since patterns in this domain rarely bind more
// than a handful of variables.
type Binding struct {
	pairs []bindingPair
}

type bindingPair struct {
	name string
	val  atom.Value
}

// Lookup returns the value bound to name, if any.
func (b Binding) Lookup(name string) (atom.Value, bool) {
	for _, p := range b.pairs {
		if p.name == name {
			return p.val, true
		}
	}
	return nil, false
}

// Extend returns a new Binding with name bound to v. It fails (ok=false)
// if name is already bound to a value not Equal to v.
func (b Binding) Extend(name string, v atom.Value) (Binding, bool) {
	for _, p := range b.pairs {
		if p.name == name {
			return b, p.val.Equal(v)
		}
	}
	out := Binding{pairs: make([]bindingPair, len(b.pairs), len(b.pairs)+1)}
	copy(out.pairs, b.pairs)
	out.pairs = append(out.pairs, bindingPair{name: name, val: v})
	return out, true
}

// Len returns the number of bound variables.
func (b Binding) Len() int { return len(b.pairs) }

// ForEach calls fn for every bound variable, in binding order.
func (b Binding) ForEach(fn func(name string, v atom.Value)) {
	for _, p := range b.pairs {
		fn(p.name, p.val)
	}
}
