package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/pipeline"
	"github.com/matzehuels/blendview/pkg/render"
)

var contentTypes = map[string]string{
	render.FormatSVG:  "image/svg+xml",
	render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	render.FormatPNG:  "image/png",
	render.FormatJSON: "application/json",
	render.FormatText: "text/plain; charset=utf-8",
}

type graphSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Pinned  bool   `json:"pinned"`
	Outputs int    `json:"outputs"`
}

type captureSummary struct {
	ID         string    `json:"id"`
	GraphID    string    `json:"graph_id"`
	State      string    `json:"state"`
	CapturedAt time.Time `json:"captured_at"`
	Nodes      int       `json:"nodes"`
	Hash       string    `json:"hash"`
}

func (s *Server) listGraphs(w http.ResponseWriter, _ *http.Request) {
	r := s.inspector.Roster()
	gs := r.List()
	out := make([]graphSummary, 0, len(gs))
	for _, g := range gs {
		sum := graphSummary{ID: g.ID(), Name: host.DisplayName(g), Pinned: r.Pinned(g)}
		if sum.Valid = host.GraphValid(g); sum.Valid {
			sum.Outputs = g.OutputCount()
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// inspectGraph looks up the {id} graph and takes a fresh snapshot of it.
func (s *Server) inspectGraph(r *http.Request) (*graph.Snapshot, error) {
	id := chi.URLParam(r, "id")
	g, ok := s.inspector.Roster().Lookup(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph not found: %s", id)
	}
	return graph.FromFrame(s.inspector.Inspect(r.Context(), g)), nil
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.inspectGraph(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.inspectGraph(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, hit, err := s.runner.RenderOne(r.Context(), snap, format, pipeline.Options{Options: opts})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Snapshot-State", snap.State)
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(data)
}

// renderOptions overlays the legend, inspector, selected and title query
// parameters on the server defaults.
func (s *Server) renderOptions(r *http.Request) (render.Options, error) {
	opts := s.defaults
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *bool
	}{
		{"legend", &opts.ShowLegend},
		{"inspector", &opts.ShowInspector},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s: not a boolean: %q", p.name, v)
		}
		*p.dst = b
	}
	if v := q.Get("selected"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "selected: not a node id: %q", v)
		}
		opts.Selected = n
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	return opts, nil
}

func (s *Server) capture(w http.ResponseWriter, r *http.Request) {
	snap, err := s.inspectGraph(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("captured", "graph", snap.GraphName, "id", snap.ID, "nodes", len(snap.Nodes))
	w.Header().Set("Location", "/v1/captures/"+snap.ID)
	writeJSON(w, http.StatusCreated, summarize(snap))
}

func (s *Server) listCaptures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit: not a count: %q", v))
			return
		}
		limit = n
	}
	snaps, err := s.store.List(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]captureSummary, len(snaps))
	for i, snap := range snaps {
		out[i] = summarize(snap)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCapture(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "captureID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func summarize(s *graph.Snapshot) captureSummary {
	return captureSummary{
		ID:         s.ID,
		GraphID:    s.GraphID,
		State:      s.State,
		CapturedAt: s.CapturedAt,
		Nodes:      len(s.Nodes),
		Hash:       graph.Hash(s),
	}
}
