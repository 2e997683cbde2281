package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

func tmpl(t *testing.T, s string) quad.Template {
	t.Helper()
	tp, err := quad.ParseTemplateString(s)
	require.NoError(t, err)
	return tp
}

// S1 — Dedup and auto-context.
func TestDedupAndAutoContext(t *testing.T) {
	s := New()
	alice, age, thirty := atom.NewWord("alice"), atom.NewWord("age"), atom.NewInt(30)

	ctx1, err := s.Append(alice, age, thirty, nil)
	require.NoError(t, err)
	require.Equal(t, "EDGE:0", ctx1.String())

	ctx2, err := s.Append(alice, age, thirty, nil)
	require.NoError(t, err)
	require.True(t, ctx1.Equal(ctx2))

	ctx3, err := s.Append(alice, age, thirty, atom.NewWord("census"))
	require.NoError(t, err)
	require.False(t, ctx1.Equal(ctx3))
	require.Equal(t, 2, s.Log().Len())
}

// S2 — Variable binding across two templates.
func TestQueryJoinsTwoTemplates(t *testing.T) {
	s := New()
	parent := atom.NewWord("parent")
	_, err := s.Append(atom.NewWord("alice"), parent, atom.NewWord("bob"), nil)
	require.NoError(t, err)
	_, err = s.Append(atom.NewWord("bob"), parent, atom.NewWord("carol"), nil)
	require.NoError(t, err)

	p, err := pattern.Compile([]quad.Template{
		tmpl(t, "?x parent ?y *"),
		tmpl(t, "?y parent ?z *"),
	}, nil)
	require.NoError(t, err)

	bindings := s.Query(p)
	require.Len(t, bindings, 1)
	x, _ := bindings[0].Lookup("x")
	y, _ := bindings[0].Lookup("y")
	z, _ := bindings[0].Lookup("z")
	require.True(t, x.Equal(atom.NewWord("alice")))
	require.True(t, y.Equal(atom.NewWord("bob")))
	require.True(t, z.Equal(atom.NewWord("carol")))
}

// S3 — NAC suppression.
func TestQuerySuppressedByNAC(t *testing.T) {
	s := New()
	alice := atom.NewWord("alice")
	_, err := s.Append(alice, atom.NewWord("age"), atom.NewInt(30), nil)
	require.NoError(t, err)
	_, err = s.Append(alice, atom.NewWord("DELETED"), atom.NewWord("TRUE"), nil)
	require.NoError(t, err)

	p, err := pattern.Compile(
		[]quad.Template{tmpl(t, "?p age ?a *")},
		[]quad.Template{tmpl(t, "?p DELETED TRUE *")},
	)
	require.NoError(t, err)

	require.Empty(t, s.Query(p))
}

// S5 — Cascade: W1 on NEEDS_EVAL appends EVALUATED, W2 on EVALUATED appends DONE.
func TestCascadeRunsToCompletionBeforeAppendReturns(t *testing.T) {
	s := New()
	needsEval := tmpl(t, "?x NEEDS_EVAL TRUE *")
	evaluated := tmpl(t, "?x EVALUATED TRUE *")

	_, err := s.WatchTemplates([]quad.Template{needsEval}, nil, func(b pattern.Binding, _ []quad.Quad) {
		x, _ := b.Lookup("x")
		_, _ = s.Append(x, atom.NewWord("EVALUATED"), atom.NewWord("TRUE"), nil)
	})
	require.NoError(t, err)
	_, err = s.WatchTemplates([]quad.Template{evaluated}, nil, func(b pattern.Binding, _ []quad.Quad) {
		x, _ := b.Lookup("x")
		_, _ = s.Append(x, atom.NewWord("DONE"), atom.NewWord("TRUE"), nil)
	})
	require.NoError(t, err)

	e := atom.NewWord("e")
	_, err = s.Append(e, atom.NewWord("NEEDS_EVAL"), atom.NewWord("TRUE"), nil)
	require.NoError(t, err)

	all := s.Log().All()
	var sawEvaluated, sawDone bool
	for _, q := range all {
		if q.Source.Equal(e) && q.Attribute.Equal(atom.NewWord("EVALUATED")) {
			sawEvaluated = true
		}
		if q.Source.Equal(e) && q.Attribute.Equal(atom.NewWord("DONE")) {
			sawDone = true
		}
	}
	require.True(t, sawEvaluated, "expected the cascade to have appended EVALUATED before Append returned")
	require.True(t, sawDone, "expected the cascade to have appended DONE before Append returned")
}

// S6 — Batch rollback.
func TestBatchRollbackRestoresEverything(t *testing.T) {
	s := New()
	age := tmpl(t, "?p age ?a *")
	var fired int
	_, err := s.WatchTemplates([]quad.Template{age}, nil, func(pattern.Binding, []quad.Quad) { fired++ })
	require.NoError(t, err)

	preLen := s.Log().Len()
	preNextID := s.Log().NextID()

	boom := errors.New("boom")
	err = s.Batch(func() error {
		if _, aerr := s.Append(atom.NewWord("alice"), atom.NewWord("age"), atom.NewInt(30), nil); aerr != nil {
			return aerr
		}
		if _, aerr := s.Append(atom.NewWord("bob"), atom.NewWord("age"), atom.NewInt(40), nil); aerr != nil {
			return aerr
		}
		return boom
	})
	require.ErrorIs(t, err, ErrBatchAborted)
	require.Equal(t, preLen, s.Log().Len())
	require.Equal(t, preNextID, s.Log().NextID())
	require.Equal(t, 0, fired, "no watcher should have observed quads from an aborted batch")
}

// Boundary: a watcher installed on a store already holding quads does not
// fire retroactively.
func TestWatchDoesNotFireRetroactively(t *testing.T) {
	s := New()
	_, err := s.Append(atom.NewWord("alice"), atom.NewWord("age"), atom.NewInt(30), nil)
	require.NoError(t, err)

	var fired int
	_, err = s.WatchTemplates([]quad.Template{tmpl(t, "?p age ?a *")}, nil, func(pattern.Binding, []quad.Quad) { fired++ })
	require.NoError(t, err)
	require.Equal(t, 0, fired)
}
