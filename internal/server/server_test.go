package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/host/memory"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/pipeline"
	"github.com/matzehuels/blendview/pkg/roster"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Graph, *roster.Roster) {
	t.Helper()
	g := memory.New("locomotion")
	out := g.AddOutput("Animation", "AnimationPlayableOutput")
	mixer := g.AddPlayable("blend", "AnimationMixerPlayable", 2)
	_ = g.SetSource(out, mixer)
	_ = g.Connect(mixer, 0, g.AddPlayable("walk", "AnimationClipPlayable", 0), 0.3)
	_ = g.Connect(mixer, 1, g.AddPlayable("run", "AnimationClipPlayable", 0), 0.7)

	r := roster.New()
	r.Register(g)
	in, err := inspect.New(r, inspect.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(in, pipeline.NewRunner(c, nil, nil), nil,
		WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		})))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, g, r
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"graphs":1`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
	resp, body = get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK || string(body) != "# metrics\n" {
		t.Errorf("metrics = %d %s", resp.StatusCode, body)
	}
}

func TestListGraphs(t *testing.T) {
	ts, g, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/v1/graphs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out []graphSummary
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != g.ID() || out[0].Name != "locomotion" || !out[0].Valid || out[0].Outputs != 1 {
		t.Errorf("graphs = %+v", out)
	}
}

func TestSnapshot(t *testing.T) {
	ts, g, _ := newTestServer(t)

	resp, body := get(t, ts.URL+"/v1/graphs/"+g.ID()+"/snapshot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	snap, err := graph.Unmarshal(body)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Normal() || len(snap.Nodes) != 4 || snap.GraphID != g.ID() {
		t.Errorf("snapshot = %+v", snap)
	}

	g.Destroy()
	_, body = get(t, ts.URL+"/v1/graphs/"+g.ID()+"/snapshot")
	if snap, err = graph.Unmarshal(body); err != nil || snap.State != "invalid-graph" {
		t.Errorf("destroyed graph: state = %v, err = %v", snap, err)
	}

	resp, body = get(t, ts.URL+"/v1/graphs/nope/snapshot")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "NOT_FOUND") {
		t.Errorf("unknown graph = %d %s", resp.StatusCode, body)
	}
}

func TestRender(t *testing.T) {
	ts, g, _ := newTestServer(t)
	url := ts.URL + "/v1/graphs/" + g.ID() + "/render.svg"

	resp, body := get(t, url)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(string(body), "<svg") || resp.Header.Get("X-Cache") != "miss" {
		t.Errorf("first render: cache=%s body=%.40s", resp.Header.Get("X-Cache"), body)
	}

	resp, again := get(t, url)
	if resp.Header.Get("X-Cache") != "hit" || string(again) != string(body) {
		t.Error("unchanged graph should be served from cache")
	}

	resp, _ = get(t, url+"?legend=false")
	if resp.Header.Get("X-Cache") != "miss" {
		t.Error("changed options should miss the cache")
	}

	resp, body = get(t, ts.URL+"/v1/graphs/"+g.ID()+"/render.txt?selected=2")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "> ") {
		t.Errorf("txt render = %d %s", resp.StatusCode, body)
	}
}

func TestRenderRejectsBadRequests(t *testing.T) {
	ts, g, _ := newTestServer(t)
	base := ts.URL + "/v1/graphs/" + g.ID()

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/render.gif", http.StatusBadRequest, "INVALID_FORMAT"},
		{"/render.svg?legend=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"/render.svg?selected=x", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, base+tt.path)
			if resp.StatusCode != tt.status || !strings.Contains(string(body), tt.code) {
				t.Errorf("got %d %s", resp.StatusCode, body)
			}
		})
	}
}

func TestCaptures(t *testing.T) {
	ts, g, _ := newTestServer(t)
	url := ts.URL + "/v1/graphs/" + g.ID() + "/captures"

	var first captureSummary
	for i := 0; i < 2; i++ {
		resp, err := http.Post(url, "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("capture = %d %s", resp.StatusCode, body)
		}
		if i == 0 {
			if err := json.Unmarshal(body, &first); err != nil {
				t.Fatal(err)
			}
			if resp.Header.Get("Location") != "/v1/captures/"+first.ID {
				t.Errorf("location = %q", resp.Header.Get("Location"))
			}
		}
	}

	_, body := get(t, url+"?limit=1")
	var list []captureSummary
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Hash != first.Hash || list[0].Nodes != 4 {
		t.Errorf("captures = %+v", list)
	}

	resp, body := get(t, ts.URL+"/v1/captures/"+first.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get capture = %d %s", resp.StatusCode, body)
	}
	snap, err := graph.Unmarshal(body)
	if err != nil || snap.ID != first.ID {
		t.Errorf("capture = %+v, err = %v", snap, err)
	}

	resp, _ = get(t, ts.URL+"/v1/captures/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing capture = %d", resp.StatusCode)
	}
	resp, _ = get(t, url+"?limit=-2")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{errors.ErrCodeUnsupported, http.StatusBadRequest},
		{errors.ErrCodeGraphTooLarge, http.StatusConflict},
		{errors.ErrCodeInvalidGraph, http.StatusConflict},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
