package quad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quadreactor/engine/atom"
)

// ParseTemplateString parses a quad-template string per spec.md §6.3's
// grammar: four whitespace-separated tokens, a PatternVar prefixed with
// '?', a bare '*' for Wildcard, a bare identifier for a Word, a
// double-quoted token for a String, and a token parseable as a number for
// a Number. This is the format the reified-rule activator (§4.7) reads
// from `matches`/`produces`/`nac` quads.
func ParseTemplateString(s string) (Template, error) {
	fields := splitTemplateFields(s)
	if len(fields) != 4 {
		return Template{}, fmt.Errorf("quad: template %q: want 4 fields, got %d", s, len(fields))
	}
	var t Template
	for i, tok := range fields {
		v, err := ParseTemplateToken(tok)
		if err != nil {
			return Template{}, fmt.Errorf("quad: template %q: %w", s, err)
		}
		t = t.Set(Directions[i], v)
	}
	return t, nil
}

// ParseTemplateToken parses a single token of a template string into an
// atom.Value, following the same five-case grammar as ParseTemplateString.
func ParseTemplateToken(tok string) (atom.Value, error) {
	switch {
	case tok == "":
		return nil, fmt.Errorf("empty token")
	case tok == "*":
		return atom.WC, nil
	case strings.HasPrefix(tok, "?"):
		return atom.NewPatternVar(tok), nil
	case strings.HasPrefix(tok, `"`):
		if !strings.HasSuffix(tok, `"`) || len(tok) < 2 {
			return nil, fmt.Errorf("unterminated string literal %q", tok)
		}
		return atom.String(tok[1 : len(tok)-1]), nil
	default:
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return atom.NewInt(n), nil
		}
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return atom.NewFloat(f), nil
		}
		return atom.NewWord(tok), nil
	}
}

// splitTemplateFields splits on whitespace but keeps a double-quoted
// substring (which may itself contain spaces) as one field.
func splitTemplateFields(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}
