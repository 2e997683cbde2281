package pattern

import (
	"testing"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/quad"
)

func tmpl(s, a, t, c string) quad.Template {
	mk := func(tok string) atom.Value {
		v, err := quad.ParseTemplateToken(tok)
		if err != nil {
			panic(err)
		}
		return v
	}
	return quad.Template{Source: mk(s), Attribute: mk(a), Target: mk(t), Context: mk(c)}
}

func TestCompileLiteralSummary(t *testing.T) {
	p, err := Compile([]quad.Template{tmpl("?x", "parent", "?y", "*")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Literals[quad.Attribute]) != 1 {
		t.Fatalf("expected one literal at attribute position, got %d", len(p.Literals[quad.Attribute]))
	}
	if len(p.Literals[quad.Source]) != 0 {
		t.Fatalf("expected no literal at source position")
	}
	if p.HasOnlyWildcards {
		t.Fatalf("pattern has a literal, must not be flagged wildcard-only")
	}
}

func TestCompileAllWildcard(t *testing.T) {
	p, err := Compile([]quad.Template{tmpl("*", "*", "*", "*")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasOnlyWildcards {
		t.Fatalf("expected HasOnlyWildcards for an all-wildcard pattern")
	}
}

func TestMatchTemplateBindsAndChecksConsistency(t *testing.T) {
	ct, _ := compileTemplate(tmpl("?x", "parent", "?y", "*"))
	q := quad.Quad{Source: atom.NewWord("alice"), Attribute: atom.NewWord("parent"), Target: atom.NewWord("bob"), Context: atom.NewWord("c")}
	b, ok := MatchTemplate(ct, q, Binding{})
	if !ok {
		t.Fatalf("expected match to succeed")
	}
	x, _ := b.Lookup("x")
	if !x.Equal(atom.NewWord("alice")) {
		t.Fatalf("expected ?x bound to alice, got %v", x)
	}

	// Re-matching with an inconsistent existing binding must fail.
	bad := Binding{}
	bad, _ = bad.Extend("x", atom.NewWord("carol"))
	if _, ok := MatchTemplate(ct, q, bad); ok {
		t.Fatalf("expected match to fail when ?x is already bound to a different value")
	}
}

func TestMatchTemplateLiteralMismatch(t *testing.T) {
	ct, _ := compileTemplate(tmpl("?x", "parent", "?y", "*"))
	q := quad.Quad{Source: atom.NewWord("alice"), Attribute: atom.NewWord("sibling"), Target: atom.NewWord("bob"), Context: atom.NewWord("c")}
	if _, ok := MatchTemplate(ct, q, Binding{}); ok {
		t.Fatalf("expected literal attribute mismatch to fail the match")
	}
}

func TestInstantiate(t *testing.T) {
	ct, _ := compileTemplate(tmpl("?p", "ADULT", "TRUE", "*"))
	b := Binding{}
	b, _ = b.Extend("p", atom.NewWord("bob"))
	q := Instantiate(ct, b, atom.NewWord("rule1:F1:abc"))
	if !q.Source.Equal(atom.NewWord("bob")) {
		t.Fatalf("expected instantiated source to be bob, got %v", q.Source)
	}
	if !q.Context.Equal(atom.NewWord("rule1:F1:abc")) {
		t.Fatalf("expected context overridden to firing context, got %v", q.Context)
	}
}
