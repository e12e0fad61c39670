package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/pipeline"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
)

// Prometheus collectors register globally, so the suite shares one registry.
var testMetrics = NewMetricsRegistry()

type stubRunsRepo struct {
	runs []persistence.Run
	err  error
}

func (s *stubRunsRepo) Insert(ctx context.Context, run persistence.Run) error { return nil }
func (s *stubRunsRepo) Finish(ctx context.Context, id, status string, windows, pairs int) error {
	return nil
}
func (s *stubRunsRepo) List(ctx context.Context, limit int) ([]persistence.Run, error) {
	return s.runs, s.err
}

type stubPairsRepo struct {
	pairs []persistence.SelectedPair
}

func (s *stubPairsRepo) InsertBatch(ctx context.Context, pairs []persistence.SelectedPair) error {
	return nil
}
func (s *stubPairsRepo) ListByRun(ctx context.Context, runID string) ([]persistence.SelectedPair, error) {
	return s.pairs, nil
}

type stubBacktestRepo struct{}

func (s *stubBacktestRepo) InsertBatch(ctx context.Context, records []persistence.BacktestRecord) error {
	return nil
}
func (s *stubBacktestRepo) ListByRun(ctx context.Context, runID string) ([]persistence.BacktestRecord, error) {
	return nil, nil
}

func testServer(repo *persistence.Repository) (*httptest.Server, *Hub) {
	hub := NewHub()
	s := NewServer(":0", testMetrics, hub, repo)
	return httptest.NewServer(s.router), hub
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := testServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["persistence"] != false {
		t.Error("persistence should report false with a nil repo")
	}
}

func TestRunsEndpointWithoutPersistence(t *testing.T) {
	ts, _ := testServer(nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRunsEndpoint(t *testing.T) {
	repo := &persistence.Repository{
		Runs: &stubRunsRepo{runs: []persistence.Run{
			{ID: "run-1", Status: persistence.RunStatusComplete, Windows: 5, PairsSelected: 12},
		}},
		Pairs:     &stubPairsRepo{},
		Backtests: &stubBacktestRepo{},
	}
	ts, _ := testServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var runs []persistence.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decoding runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRunsEndpointBadLimit(t *testing.T) {
	repo := &persistence.Repository{Runs: &stubRunsRepo{}}
	ts, _ := testServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRunPairsEndpoint(t *testing.T) {
	repo := &persistence.Repository{
		Runs: &stubRunsRepo{},
		Pairs: &stubPairsRepo{pairs: []persistence.SelectedPair{
			{RunID: "run-1", Leg1: "XLE", Leg2: "VDE", Method: "nocluster"},
		}},
		Backtests: &stubBacktestRepo{},
	}
	ts, _ := testServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/run-1/pairs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var pairs []persistence.SelectedPair
	if err := json.NewDecoder(resp.Body).Decode(&pairs); err != nil {
		t.Fatalf("decoding pairs: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Leg1 != "XLE" {
		t.Errorf("pairs = %+v", pairs)
	}
}

func TestWebsocketProgressStream(t *testing.T) {
	ts, hub := testServer(nil)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.ClientCount())
	}

	sent := pipeline.Progress{RunID: "run-1", Stage: "select", Window: 2, Windows: 5}
	hub.Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got pipeline.Progress
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading progress: %v", err)
	}
	if got.RunID != "run-1" || got.Window != 2 {
		t.Errorf("progress = %+v", got)
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.Broadcast(pipeline.Progress{RunID: "run-1"})
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d", hub.ClientCount())
	}
}

func TestMetricsObserver(t *testing.T) {
	before := testMetrics.EvaluatedCount("optics", "selected")

	testMetrics.RunStarted("run-1")
	testMetrics.PairEvaluated("optics", true)
	testMetrics.PairEvaluated("optics", false)
	testMetrics.WindowDone("optics", 3, 120*time.Millisecond)
	testMetrics.RunFinished("run-1", persistence.RunStatusComplete)

	if got := testMetrics.EvaluatedCount("optics", "selected"); got != before+1 {
		t.Errorf("selected count = %v, want %v", got, before+1)
	}
	if got := testMetrics.EvaluatedCount("optics", "rejected"); got < 1 {
		t.Errorf("rejected count = %v, want at least 1", got)
	}
}
