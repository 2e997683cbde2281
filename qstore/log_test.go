package qstore

import (
	"strings"
	"testing"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/quad"
)

func mkQuad(s, a, t string, c atom.Value) quad.Quad {
	return quad.Quad{Source: atom.NewWord(s), Attribute: atom.NewWord(a), Target: atom.NewWord(t), Context: c}
}

func TestDedupIdempotence(t *testing.T) {
	l := NewLog()
	c1, err := l.Append(mkQuad("alice", "age", "30", nil))
	if err != nil {
		t.Fatal(err)
	}
	c2, err := l.Append(mkQuad("alice", "age", "30", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !c1.Equal(c2) {
		t.Fatalf("expected same context handle for duplicate append, got %v vs %v", c1, c2)
	}
	if l.Len() != 1 {
		t.Fatalf("expected exactly one stored quad, got %d", l.Len())
	}
}

func TestDistinctContextIsDistinctQuad(t *testing.T) {
	l := NewLog()
	c1, _ := l.Append(mkQuad("alice", "age", "30", nil))
	c2, _ := l.Append(mkQuad("alice", "age", "30", atom.NewWord("census")))
	if c1.Equal(c2) {
		t.Fatalf("expected distinct contexts to produce distinct quads")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 stored quads, got %d", l.Len())
	}
}

func TestAutoContextIsEdgeID(t *testing.T) {
	l := NewLog()
	c, _ := l.Append(mkQuad("alice", "age", "30", nil))
	if c.String() != "EDGE:0" {
		t.Fatalf("expected auto context EDGE:0, got %q", c)
	}
}

func TestInvalidAtomRejected(t *testing.T) {
	l := NewLog()
	q := mkQuad("alice", "age", "30", nil)
	q.Target = atom.NewPatternVar("x")
	if _, err := l.Append(q); err != ErrInvalidAtom {
		t.Fatalf("expected ErrInvalidAtom, got %v", err)
	}
}

func TestBatchCommitIsAtomicAndOrdered(t *testing.T) {
	l := NewLog()
	if err := l.BeginBatch(); err != nil {
		t.Fatal(err)
	}
	l.Append(mkQuad("a", "p", "1", nil))
	l.Append(mkQuad("a", "p", "2", nil))
	if l.Len() != 0 {
		t.Fatalf("batch must not be visible before commit, got len=%d", l.Len())
	}
	added, err := l.CommitBatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 committed quads, got %d", len(added))
	}
	if added[0].Id != 0 || added[1].Id != 1 {
		t.Fatalf("expected ids in declaration order, got %d,%d", added[0].Id, added[1].Id)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 visible quads after commit, got %d", l.Len())
	}
}

func TestBatchAbortRewindsEverything(t *testing.T) {
	l := NewLog()
	l.Append(mkQuad("pre", "p", "1", nil))
	preLen, preNext := l.Len(), l.NextID()

	if err := l.BeginBatch(); err != nil {
		t.Fatal(err)
	}
	l.Append(mkQuad("a", "p", "1", nil))
	l.Append(mkQuad("a", "p", "2", nil))
	if err := l.AbortBatch(); err != nil {
		t.Fatal(err)
	}

	if l.Len() != preLen {
		t.Fatalf("expected log length rewound to %d, got %d", preLen, l.Len())
	}
	if l.NextID() != preNext {
		t.Fatalf("expected next id rewound to %d, got %d", preNext, l.NextID())
	}
}

func TestDumpLoadRoundTrip(t *testing.T) {
	l := NewLog()
	l.Append(mkQuad("alice", "age", "30", nil))
	l.Append(quad.Quad{Source: atom.NewWord("alice"), Attribute: atom.NewWord("bio"), Target: atom.String("hi there"), Context: atom.NewWord("census")})

	var buf strings.Builder
	if err := l.Dump(&buf); err != nil {
		t.Fatal(err)
	}

	l2 := NewLog()
	n, err := l2.Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 quads loaded, got %d", n)
	}
	if l2.Len() != 2 {
		t.Fatalf("expected 2 quads in reloaded log, got %d", l2.Len())
	}
}

func TestNumberEqualityDedupsAcrossIntAndFloat(t *testing.T) {
	l := NewLog()
	c1, _ := l.Append(quad.Quad{Source: atom.NewWord("a"), Attribute: atom.NewWord("n"), Target: atom.NewInt(1), Context: atom.NewWord("ctx")})
	c2, _ := l.Append(quad.Quad{Source: atom.NewWord("a"), Attribute: atom.NewWord("n"), Target: atom.NewFloat(1.0), Context: atom.NewWord("ctx")})
	if !c1.Equal(c2) || l.Len() != 1 {
		t.Fatalf("expected int 1 and float 1.0 to dedup to the same quad")
	}
}
