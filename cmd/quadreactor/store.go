package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quadreactor/engine/engine"
	"github.com/quadreactor/engine/internal/clog"
	"github.com/quadreactor/engine/internal/engineconfig"
	"github.com/quadreactor/engine/internal/metrics"
	"github.com/quadreactor/engine/quad"
	"github.com/quadreactor/engine/rules"
)

// buildStore wires a fresh engine.Store the way every command that
// touches live data needs it: Prometheus-backed metrics, the
// reified-rule activator installed up front so any "rule"/"system" quads
// in a seeded load activate during the load itself, and an optional seed
// from a dump file.
func buildStore(cfg engineconfig.Config, loadPath string) (*engine.Store, error) {
	reg := prometheus.NewRegistry()
	s := engine.New(engine.WithMetrics(metrics.New(reg)))

	if _, err := rules.Install(s); err != nil {
		return nil, fmt.Errorf("installing rule activator: %w", err)
	}

	path := loadPath
	if path == "" {
		path = cfg.InitialLoadPath
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening load path %s: %w", path, err)
		}
		defer f.Close()
		n, err := loadThroughStore(s, f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		clog.Infof("loaded %d quad(s) from %s", n, path)
	}
	return s, nil
}

// loadThroughStore reads the dump format qstore.Log.Dump writes and
// re-appends every quad through s.Append rather than qstore.Log.Load, so
// that a "memberOf rule system" quad seeded from a file activates its
// rule exactly as it would if typed live at the REPL (spec.md §4.7's
// activation watcher only fires on quads that actually pass through
// Append, never retroactively over quads already present -- see
// engine.Store.Watch's doc comment).
func loadThroughStore(s *engine.Store, r *os.File) (int, error) {
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
		if _, err := s.Append(tpl.Source, tpl.Attribute, tpl.Target, tpl.Context); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}
