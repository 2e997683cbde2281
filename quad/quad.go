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

// Package quad defines the Quad 4-tuple: (Source, Attribute, Target,
// Context). The store's log is a sequence of Quads; patterns are built
// from Templates, which share the same four positions but allow
// PatternVar/Wildcard atoms.
package quad

import (
	"fmt"

	"github.com/quadreactor/engine/atom"
)

// Direction names one of the four quad positions.
type Direction int

const (
	Source Direction = iota
	Attribute
	Target
	Context
)

var Directions = [4]Direction{Source, Attribute, Target, Context}

func (d Direction) String() string {
	switch d {
	case Source:
		return "source"
	case Attribute:
		return "attribute"
	case Target:
		return "target"
	case Context:
		return "context"
	default:
		return fmt.Sprintf("illegal-direction(%d)", int(d))
	}
}

// Quad is the atomic unit of storage: a 4-tuple of atoms. Identity (for
// dedup) is equality of all four fields under atom.Value.Equal; Id is
// assigned by the log and is explicitly not part of that identity
// (spec.md §3.2).
type Quad struct {
	Source    atom.Value
	Attribute atom.Value
	Target    atom.Value
	Context   atom.Value
	Id        int64
}

// Get returns the atom at direction d.
func (q Quad) Get(d Direction) atom.Value {
	switch d {
	case Source:
		return q.Source
	case Attribute:
		return q.Attribute
	case Target:
		return q.Target
	case Context:
		return q.Context
	default:
		panic(d.String())
	}
}

// Set returns a copy of q with direction d set to v.
func (q Quad) Set(d Direction, v atom.Value) Quad {
	switch d {
	case Source:
		q.Source = v
	case Attribute:
		q.Attribute = v
	case Target:
		q.Target = v
	case Context:
		q.Context = v
	default:
		panic(d.String())
	}
	return q
}

// EqualIdentity reports whether q and o share all four fields under atom
// equality, ignoring Id. This is the dedup equality from spec.md §3.2.
func (q Quad) EqualIdentity(o Quad) bool {
	return q.Source.Equal(o.Source) &&
		q.Attribute.Equal(o.Attribute) &&
		q.Target.Equal(o.Target) &&
		q.Context.Equal(o.Context)
}

// HasPatternOnlyAtom reports whether any of the four fields is a
// PatternVar or Wildcard, which is illegal in a stored quad (spec.md §3.2,
// §4.1 step 1: fails with InvalidAtom).
func (q Quad) HasPatternOnlyAtom() bool {
	for _, d := range Directions {
		if v := q.Get(d); v != nil && atom.IsPatternOnly(v) {
			return true
		}
	}
	return false
}

// String pretty-prints a quad as its four atoms in parentheses,
// "(S A T C)".
func (q Quad) String() string {
	return fmt.Sprintf("(%s %s %s %s)", atom.Value(q.Source), q.Attribute, q.Target, q.Context)
}

// Template is a quad-shaped slot that may hold a literal atom, a
// PatternVar, or the Wildcard at each of its four positions.
type Template struct {
	Source    atom.Value
	Attribute atom.Value
	Target    atom.Value
	Context   atom.Value
}

// Get returns the atom at direction d.
func (t Template) Get(d Direction) atom.Value {
	switch d {
	case Source:
		return t.Source
	case Attribute:
		return t.Attribute
	case Target:
		return t.Target
	case Context:
		return t.Context
	default:
		panic(d.String())
	}
}

// Set returns a copy of t with direction d set to v.
func (t Template) Set(d Direction, v atom.Value) Template {
	switch d {
	case Source:
		t.Source = v
	case Attribute:
		t.Attribute = v
	case Target:
		t.Target = v
	case Context:
		t.Context = v
	default:
		panic(d.String())
	}
	return t
}

// IsLiteral reports whether the atom at direction d is a literal (neither
// PatternVar nor Wildcard nor nil).
func (t Template) IsLiteral(d Direction) bool {
	v := t.Get(d)
	return v != nil && !atom.IsPatternOnly(v)
}
