// Package replshell is the interactive shell for the engine: append
// quads, install watchers, run one-shot queries, and inspect installed
// watchers, with a liner-backed prompt and persistent history.
//
// Grounded on internal/repl/repl.go (teacher): the same liner.State
// terminal/history lifecycle, the ":debug"/"help"/"exit" command set, and
// splitLine's command/argument split. The query language itself (gizmo,
// nquads parsing) is replaced by this spec's quad-template-string grammar
// (spec.md §6.3), since the surface-syntax parser is out of scope
// (spec.md §1) — the shell only ever feeds already-typed templates.
package replshell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/engine"
	"github.com/quadreactor/engine/internal/clog"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

const (
	ps1     = "quadreactor> "
	history = ".quadreactor_history"
)

// Run starts the read-eval-print loop over s, blocking until the user
// exits or EOF on the prompt.
func Run(s *engine.Store) error {
	term := liner.NewLiner()
	defer term.Close()

	if f, err := os.Open(history); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer persistHistory(term)

	fmt.Println(`quadreactor shell. Type "help" for commands, "exit" to quit.`)
	for {
		line, err := term.Prompt(ps1)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}
		term.AppendHistory(line)

		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		cmd, args := splitLine(line)
		if err := dispatch(s, cmd, args); err != nil {
			if err == errExit {
				return nil
			}
			fmt.Println("Error:", err)
		}
	}
}

var errExit = fmt.Errorf("exit")

func dispatch(s *engine.Store, cmd, args string) error {
	switch cmd {
	case ":a":
		return cmdAppend(s, args)
	case ":q":
		return cmdQuery(s, args)
	case ":w":
		return cmdWatch(s, args)
	case ":watchers":
		cmdWatchers(s)
		return nil
	case ":debug":
		return cmdDebug(args)
	case "help":
		printHelp()
		return nil
	case "exit":
		return errExit
	default:
		return fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

func printHelp() {
	fmt.Print(`Commands:
  :a <source> <attribute> <target> [<context>]   append a quad
  :q <template>[; <template> ...] [NAC <template>[; ...]]   one-shot query
  :w <template>[; <template> ...] [NAC <template>[; ...]]   install a watcher, prints completions as they arrive
  :watchers                                       list installed watchers
  :debug [t|f]                                    toggle verbose logging
  help                                            this help
  exit                                            quit
`)
}

func cmdAppend(s *engine.Store, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf(":a wants 3 or 4 fields, got %d", len(fields))
	}
	src, err := quad.ParseTemplateToken(fields[0])
	if err != nil {
		return err
	}
	attr, err := quad.ParseTemplateToken(fields[1])
	if err != nil {
		return err
	}
	tgt, err := quad.ParseTemplateToken(fields[2])
	if err != nil {
		return err
	}
	var ctx atom.Value
	if len(fields) == 4 {
		ctx, err = quad.ParseTemplateToken(fields[3])
		if err != nil {
			return err
		}
	}

	c, err := s.Append(src, attr, tgt, ctx)
	if err != nil {
		return err
	}
	fmt.Printf("-> %s\n", c.String())
	return nil
}

func cmdQuery(s *engine.Store, args string) error {
	p, err := parsePatternArgs(args)
	if err != nil {
		return err
	}
	bindings := s.Query(p)
	fmt.Printf("%d result(s)\n", len(bindings))
	for _, b := range bindings {
		printBinding(b)
	}
	return nil
}

func cmdWatch(s *engine.Store, args string) error {
	p, err := parsePatternArgs(args)
	if err != nil {
		return err
	}
	h := s.Watch(p, func(b pattern.Binding, _ []quad.Quad) {
		fmt.Println("match:")
		printBinding(b)
	})
	fmt.Printf("watcher %d installed\n", h)
	return nil
}

func cmdWatchers(s *engine.Store) {
	for _, w := range s.Watchers() {
		fmt.Printf("#%d (installed %d): %d template(s), %d nac\n", w.Handle, w.InstallOrder, w.TemplateCount, w.NACCount)
	}
}

func cmdDebug(args string) error {
	args = strings.TrimSpace(args)
	var debug bool
	var err error
	switch args {
	case "t", "":
		debug = true
	case "f":
		debug = false
	default:
		debug, err = strconv.ParseBool(args)
		if err != nil {
			return fmt.Errorf("cannot parse %q as a boolean", args)
		}
	}
	if debug {
		clog.SetV(2)
	} else {
		clog.SetV(0)
	}
	fmt.Printf("Debug set to %t\n", debug)
	return nil
}

// parsePatternArgs parses "<t1>; <t2>; ... [NAC <n1>; <n2>; ...]" into a
// compiled Pattern (spec.md §6.3's quad-template-string grammar, with an
// uppercase "NAC" keyword separating match templates from NAC templates).
func parsePatternArgs(args string) (*pattern.Pattern, error) {
	matchPart, nacPart, _ := strings.Cut(args, " NAC ")
	matchTemplates, err := parseTemplateList(matchPart)
	if err != nil {
		return nil, err
	}
	nacTemplates, err := parseTemplateList(nacPart)
	if err != nil {
		return nil, err
	}
	return pattern.Compile(matchTemplates, nacTemplates)
}

func parseTemplateList(s string) ([]quad.Template, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []quad.Template
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := quad.ParseTemplateString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func printBinding(b pattern.Binding) {
	if b.Len() == 0 {
		fmt.Println("  (empty binding)")
		return
	}
	b.ForEach(func(name string, v atom.Value) {
		fmt.Printf("  ?%s = %s\n", name, v.String())
	})
}

// splitLine splits a line into a command and its arguments, e.g. ":a b c d"
// into ":a" and " b c d" (teacher's internal/repl/repl.go splitLine).
func splitLine(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd := strings.Fields(line)[0]
	var rest string
	if len(line) > len(cmd) {
		rest = line[len(cmd):]
	}
	return cmd, rest
}

func persistHistory(term *liner.State) {
	f, err := os.OpenFile(history, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not persist history: %v\n", err)
		return
	}
	defer f.Close()
	_, _ = term.WriteHistory(f)
}
