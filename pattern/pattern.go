// Package pattern compiles an ordered list of quad templates (plus
// optional NAC templates) into the Pattern IR described by spec.md §4.2:
// a contiguous template array, a per-template literal/variable bit
// vector, and a literal-summary set per position used by the
// selective-activation index (package index).
//
// Grounded on graph/memstore/quadstore.go's QuadDirectionIndex, which
// indexes committed quads by direction; here the same per-direction
// indexing discipline is applied at compile time to a pattern's literal
// positions instead of to stored values.
package pattern

import (
	"errors"
	"fmt"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/quad"
)

// ErrInvalidPattern is returned by Compile on a malformed template
// (spec.md §4.8, §7): currently this means an empty-field template, since
// arity is fixed by quad.Template's shape.
var ErrInvalidPattern = errors.New("pattern: invalid template")

// fieldKind distinguishes the three things that may occupy a template
// position, used to build the per-template bit vector (spec.md §4.2).
type fieldKind byte

const (
	fieldLiteral fieldKind = iota
	fieldVar
	fieldWildcard
)

// CompiledTemplate is one quad template plus its per-position field kinds,
// so matching is a branch on fieldKind rather than a type switch on the atom.
type CompiledTemplate struct {
	Template quad.Template
	Kinds    [4]fieldKind
}

func (ct CompiledTemplate) kindAt(d quad.Direction) fieldKind { return ct.Kinds[d] }

// LiteralSummary holds, for each of the four positions, the set of
// distinct literal atoms used at that position across every match
// template in a pattern. It is the input to the selective-activation
// index's enrollment decision (package index).
type LiteralSummary [4]map[string]atom.Value

func newLiteralSummary() LiteralSummary {
	var ls LiteralSummary
	for i := range ls {
		ls[i] = make(map[string]atom.Value)
	}
	return ls
}

// Pattern is the compiled IR for an ordered list of quad templates plus an
// optional list of NAC templates.
type Pattern struct {
	Templates        []CompiledTemplate
	NAC              []CompiledTemplate
	Literals         LiteralSummary // summary across Templates only, per spec.md §3.3/§4.2
	HasOnlyWildcards bool           // true iff every position of every match template is a PatternVar or Wildcard
}

// Compile builds the Pattern IR from raw templates and NAC templates.
// Compile never mutates its inputs.
func Compile(templates []quad.Template, nac []quad.Template) (*Pattern, error) {
	p := &Pattern{
		Literals: newLiteralSummary(),
	}
	for i, t := range templates {
		ct, err := compileTemplate(t)
		if err != nil {
			return nil, fmt.Errorf("pattern: match template %d: %w", i, err)
		}
		p.Templates = append(p.Templates, ct)
	}
	for i, t := range nac {
		ct, err := compileTemplate(t)
		if err != nil {
			return nil, fmt.Errorf("pattern: nac template %d: %w", i, err)
		}
		p.NAC = append(p.NAC, ct)
	}

	anyLiteral := false
	for _, ct := range p.Templates {
		for _, d := range quad.Directions {
			if ct.kindAt(d) == fieldLiteral {
				v := ct.Template.Get(d)
				p.Literals[d][atom.KeyOf(v)] = v
				anyLiteral = true
			}
		}
	}
	p.HasOnlyWildcards = !anyLiteral
	return p, nil
}

func compileTemplate(t quad.Template) (CompiledTemplate, error) {
	ct := CompiledTemplate{Template: t}
	for _, d := range quad.Directions {
		v := t.Get(d)
		if v == nil {
			return ct, ErrInvalidPattern
		}
		switch {
		case atom.IsWildcard(v):
			ct.Kinds[d] = fieldWildcard
		case atom.IsPatternVar(v):
			ct.Kinds[d] = fieldVar
		default:
			ct.Kinds[d] = fieldLiteral
		}
	}
	return ct, nil
}

// Len returns the number of match templates.
func (p *Pattern) Len() int { return len(p.Templates) }
