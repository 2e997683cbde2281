package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/engine"
)

// S4 — Reified rule with initial scan.
func TestReifiedRuleFiresOnExistingDataAndOnNewData(t *testing.T) {
	s := engine.New()
	_, err := s.Append(atom.NewWord("bob"), atom.NewWord("age"), atom.NewInt(25), nil)
	require.NoError(t, err)
	_, err = s.Append(atom.NewWord("carol"), atom.NewWord("age"), atom.NewInt(40), nil)
	require.NoError(t, err)

	a, err := Install(s)
	require.NoError(t, err)

	rule := atom.NewWord("adultRule")
	_, err = s.Append(rule, atom.NewWord("matches"), atom.String("?p age ?a *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, atom.NewWord("produces"), atom.String("?p ADULT TRUE *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, memberOfWord, ruleWord, systemCtx)
	require.NoError(t, err)

	require.Contains(t, a.active, atom.KeyOf(rule))

	hasFact := func(src string) bool {
		for _, q := range s.Log().All() {
			if q.Source.Equal(atom.NewWord(src)) && q.Attribute.Equal(atom.NewWord("ADULT")) && q.Target.Equal(atom.NewWord("TRUE")) {
				return true
			}
		}
		return false
	}
	require.True(t, hasFact("bob"))
	require.True(t, hasFact("carol"))

	firings := 0
	for _, q := range s.Log().All() {
		if q.Source.Equal(rule) && q.Attribute.Equal(firedWord) {
			firings++
		}
	}
	require.Equal(t, 2, firings)

	// New data after activation fires too.
	_, err = s.Append(atom.NewWord("dinah"), atom.NewWord("age"), atom.NewInt(19), nil)
	require.NoError(t, err)
	require.True(t, hasFact("dinah"))
}

func TestTombstoneUninstallsTheRuleWatcher(t *testing.T) {
	s := engine.New()
	a, err := Install(s)
	require.NoError(t, err)

	rule := atom.NewWord("markRule")
	_, err = s.Append(rule, atom.NewWord("matches"), atom.String("?p flagged TRUE *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, atom.NewWord("produces"), atom.String("?p SEEN TRUE *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, memberOfWord, ruleWord, systemCtx)
	require.NoError(t, err)
	require.Contains(t, a.active, atom.KeyOf(rule))

	_, err = s.Append(rule, memberOfWord, ruleWord, tombstoneCtx)
	require.NoError(t, err)
	require.NotContains(t, a.active, atom.KeyOf(rule))

	_, err = s.Append(atom.NewWord("x"), atom.NewWord("flagged"), atom.NewWord("TRUE"), nil)
	require.NoError(t, err)
	for _, q := range s.Log().All() {
		require.False(t, q.Attribute.Equal(atom.NewWord("SEEN")), "tombstoned rule must not fire")
	}
}

func TestReactivationIsNoOp(t *testing.T) {
	s := engine.New()
	a, err := Install(s)
	require.NoError(t, err)

	rule := atom.NewWord("idemRule")
	_, err = s.Append(rule, atom.NewWord("matches"), atom.String("?p age ?a *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, atom.NewWord("produces"), atom.String("?p ADULT TRUE *"), rule)
	require.NoError(t, err)
	_, err = s.Append(rule, memberOfWord, ruleWord, systemCtx)
	require.NoError(t, err)
	h1 := a.active[atom.KeyOf(rule)]

	_, err = s.Append(rule, memberOfWord, ruleWord, systemCtx)
	require.NoError(t, err)
	require.Equal(t, h1, a.active[atom.KeyOf(rule)])
}
