package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

// readPatternFile parses a pattern file into a compiled Pattern. Each
// non-blank, non-comment line is a quad-template string (spec.md §6.3);
// a line reading exactly "NAC" switches subsequent lines into the NAC
// template list. Shared by the "query" and "watch" commands.
func readPatternFile(r io.Reader) (*pattern.Pattern, error) {
	sc := bufio.NewScanner(r)
	var match, nac []quad.Template
	inNAC := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "NAC" {
			inNAC = true
			continue
		}
		t, err := quad.ParseTemplateString(line)
		if err != nil {
			return nil, err
		}
		if inNAC {
			nac = append(nac, t)
		} else {
			match = append(match, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pattern.Compile(match, nac)
}
