package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/httputil"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

var fastBackoff = httputil.Backoff{Attempts: 3, Delay: time.Millisecond}

func testClient(url string, opts ...Option) *Client {
	opts = append([]Option{WithBackoff(fastBackoff), WithLogger(log.New(io.Discard))}, opts...)
	return New(url, opts...)
}

func samplePayload() *pipeline.Payload {
	return &pipeline.Payload{
		Nodes: []pipeline.Node{{ID: "input-1", Type: pipeline.TypeInput}, {ID: "output-1", Type: pipeline.TypeOutput}},
		Edges: []pipeline.Edge{{ID: "e", Source: "input-1", Target: "output-1"}},
	}
}

func TestParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ParsePath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var p pipeline.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(pipeline.Response{
			NumNodes: len(p.Nodes),
			NumEdges: len(p.Edges),
			IsDAG:    true,
			Message:  "Pipeline is valid! 2 nodes, 1 edges.",
		})
	}))
	defer srv.Close()

	res, err := testClient(srv.URL+"/").Parse(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := dag.Result{NodeCount: 2, EdgeCount: 1, IsAcyclic: true, Message: "Pipeline is valid! 2 nodes, 1 edges."}
	if res != want {
		t.Errorf("Parse = %+v, want %+v", res, want)
	}
}

func TestParseRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(pipeline.Response{NumNodes: 2, NumEdges: 1, IsDAG: true, Message: "ok"})
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Parse(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if calls.Load() != 3 || !res.IsAcyclic {
		t.Errorf("calls = %d, res = %+v", calls.Load(), res)
	}
}

func TestParseDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		io.WriteString(w, `{"error": {"code": "PAYLOAD_TOO_LARGE", "message": "pipeline has 9 nodes (max 2)"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Parse(context.Background(), samplePayload())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
	if !errors.Is(err, errors.ErrCodeTooLarge) {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeTooLarge)
	}
	if msg := errors.UserMessage(err); msg != "pipeline has 9 nodes (max 2)" {
		t.Errorf("message = %q", msg)
	}
}

func TestParseUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(url).Parse(context.Background(), samplePayload())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("got %v, want %s", err, errors.ErrCodeNetwork)
	}
}

func TestParseTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := testClient(srv.URL, WithTimeout(20*time.Millisecond), WithBackoff(httputil.Backoff{Attempts: 1}))
	_, err := c.Parse(context.Background(), samplePayload())
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("got %v, want %s", err, errors.ErrCodeTimeout)
	}
}

func TestParseBadResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Parse(context.Background(), samplePayload()); err == nil {
		t.Error("undecodable body should fail")
	}
}

func TestParseOrFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := samplePayload()
	res := testClient(srv.URL).ParseOrFallback(context.Background(), p)
	want := dag.Result{NodeCount: 2, EdgeCount: 1, IsAcyclic: false, Message: FallbackMessage}
	if res != want {
		t.Errorf("ParseOrFallback = %+v, want %+v", res, want)
	}
}

func TestPrecheck(t *testing.T) {
	p := samplePayload()
	p.Edges = append(p.Edges, pipeline.Edge{Source: "output-1", Target: "input-1"})

	rep, err := New("http://unused").Precheck(p)
	if err != nil {
		t.Fatalf("Precheck: %v", err)
	}
	if rep.IsAcyclic || rep.Message != dag.MessageCycle {
		t.Errorf("Precheck = %+v, want cycle", rep.Result)
	}

	p.Edges = append(p.Edges, pipeline.Edge{Source: "input-1", Target: "ghost"})
	if _, err := New("http://unused", WithPolicy(dag.PolicyReject)).Precheck(p); err == nil {
		t.Error("reject policy should fail on undeclared target")
	}
}

func TestNewTrimsBaseURL(t *testing.T) {
	c := New("http://localhost:8000///")
	if c.BaseURL() != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
	if !strings.HasSuffix(c.BaseURL()+ParsePath, "8000/pipelines/parse") {
		t.Error("unexpected endpoint")
	}
}
