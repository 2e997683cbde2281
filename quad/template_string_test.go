package quad

import (
	"testing"

	"github.com/quadreactor/engine/atom"
)

func TestParseTemplateString(t *testing.T) {
	tpl, err := ParseTemplateString(`?p age ?a *`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tpl.Source.(atom.PatternVar); !ok {
		t.Errorf("expected source to be a PatternVar, got %T", tpl.Source)
	}
	if w, ok := tpl.Attribute.(atom.Word); !ok || w.String() != "AGE" {
		t.Errorf("expected attribute to be Word AGE, got %v", tpl.Attribute)
	}
	if !atom.IsWildcard(tpl.Context) {
		t.Errorf("expected context to be wildcard")
	}
}

func TestParseTemplateStringWithQuotedStringContainingSpaces(t *testing.T) {
	tpl, err := ParseTemplateString(`?r produces "?p ADULT TRUE *" *`)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := tpl.Target.(atom.String)
	if !ok {
		t.Fatalf("expected target to be a String, got %T", tpl.Target)
	}
	if string(s) != "?p ADULT TRUE *" {
		t.Errorf("unexpected string contents: %q", s)
	}
}

func TestParseTemplateStringWrongArity(t *testing.T) {
	if _, err := ParseTemplateString(`?p age ?a`); err == nil {
		t.Fatalf("expected error for 3-field template")
	}
}

func TestParseTemplateTokenNumber(t *testing.T) {
	v, err := ParseTemplateToken("30")
	if err != nil {
		t.Fatal(err)
	}
	n, ok := v.(atom.Number)
	if !ok || n.Int64() != 30 {
		t.Errorf("expected Number(30), got %v", v)
	}
}
