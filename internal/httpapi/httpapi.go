// Package httpapi is the engine's read-only HTTP introspection surface
// (SPEC_FULL.md §3.2): GET /quads, GET /contexts, POST /query, plus
// /metrics via promhttp. There are no mutation endpoints — append/watch
// stay programmatic-surface-only (spec.md §6.1); an HTTP write surface
// would be exactly the "I/O effect" spec.md §1 places out of scope.
//
// Grounded on the teacher's server/http package (trimmed heavily: no
// multi-backend routing, no httprouter — four static routes are covered
// by net/http.ServeMux without a router dependency, see DESIGN.md).
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quadreactor/engine/atom"
	"github.com/quadreactor/engine/engine"
	"github.com/quadreactor/engine/pattern"
	"github.com/quadreactor/engine/quad"
)

// NewMux builds the introspection surface over s.
func NewMux(s *engine.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/quads", handleQuads(s))
	mux.HandleFunc("/contexts", handleContexts(s))
	mux.HandleFunc("/query", handleQuery(s))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func handleQuads(s *engine.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctxParam := r.URL.Query().Get("context")
		if ctxParam == "" {
			http.Error(w, "missing ?context=", http.StatusBadRequest)
			return
		}
		ctx, err := quad.ParseTemplateToken(ctxParam)
		if err != nil || atom.IsPatternOnly(ctx) {
			http.Error(w, fmt.Sprintf("invalid context literal %q", ctxParam), http.StatusBadRequest)
			return
		}
		writeJSON(w, quadsToJSON(s.Log().EdgesInContext(ctx)))
	}
}

func handleContexts(s *engine.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contexts := s.Log().ListContexts()
		out := make([]string, len(contexts))
		for i, c := range contexts {
			out[i] = c.String()
		}
		writeJSON(w, out)
	}
}

// jsonQuad renders a quad.Quad's atoms via their surface-syntax String(),
// since atom.Value's concrete kinds carry unexported fields that
// json.Marshal can't see directly.
type jsonQuad struct {
	Source    string `json:"source"`
	Attribute string `json:"attribute"`
	Target    string `json:"target"`
	Context   string `json:"context"`
	ID        int64  `json:"id"`
}

func quadsToJSON(quads []quad.Quad) []jsonQuad {
	out := make([]jsonQuad, len(quads))
	for i, q := range quads {
		out[i] = jsonQuad{
			Source:    q.Source.String(),
			Attribute: q.Attribute.String(),
			Target:    q.Target.String(),
			Context:   q.Context.String(),
			ID:        q.Id,
		}
	}
	return out
}

// queryRequest is the JSON body POST /query expects: an ordered list of
// four-field template strings for the match pattern, plus an optional
// list for the NAC (spec.md §6.3's quad-template-string grammar).
type queryRequest struct {
	Match []string `json:"match"`
	NAC   []string `json:"nac"`
}

func handleQuery(s *engine.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		match, err := parseTemplates(req.Match)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		nac, err := parseTemplates(req.NAC)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := pattern.Compile(match, nac)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, bindingsToJSON(s.Query(p)))
	}
}

func parseTemplates(raw []string) ([]quad.Template, error) {
	out := make([]quad.Template, 0, len(raw))
	for _, s := range raw {
		t, err := quad.ParseTemplateString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func bindingsToJSON(bindings []pattern.Binding) []map[string]string {
	out := make([]map[string]string, 0, len(bindings))
	for _, b := range bindings {
		m := make(map[string]string)
		b.ForEach(func(name string, v atom.Value) { m[name] = v.String() })
		out = append(out, m)
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
