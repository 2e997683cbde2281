package qstore

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/quadreactor/engine/quad"
)

// Dump writes every committed quad to w, one per line, as four
// whitespace-separated tokens in the same literal syntax the reified-rule
// template strings use (quad.ParseTemplateToken), so Load can read it back
// through ordinary Append calls. Grounded on the teacher's
// cmd/cayleyexport (dump the log to a portable line format); this is
// export/import at the boundary, not a durability guarantee — quads are
// re-appended (re-deduped, re-numbered), not replayed verbatim.
func (l *Log) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, q := range l.All() {
		if _, err := fmt.Fprintf(bw, "%s %s %s %s\n",
			q.Source, q.Attribute, q.Target, q.Context); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads lines written by Dump (or hand-authored in the same format)
// and re-appends each quad through Append, line by line. Blank lines and
// lines starting with '#' are skipped.
func (l *Log) Load(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tpl, err := quad.ParseTemplateString(line)
		if err != nil {
			return n, err
		}
		q := quad.Quad{Source: tpl.Source, Attribute: tpl.Attribute, Target: tpl.Target, Context: tpl.Context}
		if _, err := l.Append(q); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}
