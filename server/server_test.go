package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/simulation"
	"github.com/signalnine/warsim/store"
)

type memStore struct {
	mu      sync.Mutex
	runs    map[string]report.Summary
	games   map[string][]simulation.GameRecord
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{runs: map[string]report.Summary{}, games: map[string][]simulation.GameRecord{}}
}

func (m *memStore) SaveRun(ctx context.Context, s report.Summary, records []simulation.GameRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	s.RunID = uuid.NewString()
	m.runs[s.RunID] = s
	m.games[s.RunID] = records
	return s.RunID, nil
}

func (m *memStore) LoadRun(ctx context.Context, id string) (*report.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return &s, nil
}

func (m *memStore) LoadGames(ctx context.Context, id string) ([]simulation.GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games[id], nil
}

func (m *memStore) ListRuns(ctx context.Context, limit int) ([]report.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []report.Summary
	for _, s := range m.runs {
		out = append(out, s)
	}
	return out, nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(Options{})

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"persistence":false}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSimulate(t *testing.T) {
	srv := New(Options{MaxWorkers: 4})

	rec := doJSON(t, srv, http.MethodPost, "/api/simulations",
		SimulationRequest{Games: 40, Policy: "in-order", Seed: 5, Workers: 2, MaxIterations: 2000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.RunID, "unpersisted runs get no id")
	assert.Equal(t, "in-order", got.Policy)
	assert.Equal(t, 2000, got.MaxIterations)

	records, err := simulation.RunBatch(simulation.Config{Games: 40, Policy: game.InOrder{}, Seed: 5, MaxIterations: 2000})
	require.NoError(t, err)
	assert.Equal(t, simulation.Aggregate(records), got.Stats)
}

func TestSimulate_Rejects(t *testing.T) {
	srv := New(Options{MaxGames: 100, MaxWorkers: 4, MaxIterations: 5000})

	tests := []struct {
		name string
		body any
	}{
		{"no games", SimulationRequest{Policy: "shuffled"}},
		{"too many games", SimulationRequest{Games: 101}},
		{"unknown policy", SimulationRequest{Games: 1, Policy: "riffle"}},
		{"negative cap", SimulationRequest{Games: 1, MaxIterations: -5}},
		{"cap above server limit", SimulationRequest{Games: 1, Policy: "in-order", MaxIterations: 5001}},
		{"huge cap", SimulationRequest{Games: 1, Policy: "in-order", MaxIterations: math.MaxInt32}},
		{"too many workers", SimulationRequest{Games: 1, Workers: 5}},
		{"huge worker pool", SimulationRequest{Games: 1, Workers: 1 << 24}},
		{"persist without store", SimulationRequest{Games: 1, Persist: true}},
		{"malformed body", "games=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/simulations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestBatchConfig_Limits(t *testing.T) {
	srv := New(Options{MaxWorkers: 3, MaxIterations: 700, Workers: 16})

	cfg, err := srv.batchConfig(SimulationRequest{Games: 5, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers, "the server default is clamped to the limit")
	assert.Equal(t, 700, cfg.MaxIterations, "0 uses the server cap")
	assert.Equal(t, 700, cfg.EffectiveMaxIterations())

	cfg, err = srv.batchConfig(SimulationRequest{Games: 5, Seed: 1, Workers: 2, MaxIterations: 700})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 700, cfg.MaxIterations)

	_, err = srv.batchConfig(SimulationRequest{Games: 5, Workers: 4})
	assert.Error(t, err)
	_, err = srv.batchConfig(SimulationRequest{Games: 5, MaxIterations: 701})
	assert.Error(t, err)
}

func TestBatchConfig_DefaultLimits(t *testing.T) {
	srv := New(Options{})

	cfg, err := srv.batchConfig(SimulationRequest{Games: 1, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, game.DefaultMaxIterations, cfg.MaxIterations)

	_, err = srv.batchConfig(SimulationRequest{Games: 1, MaxIterations: game.DefaultMaxIterations + 1})
	assert.Error(t, err)
}

func TestSimulate_PersistAndFetch(t *testing.T) {
	st := newMemStore()
	srv := New(Options{Store: st})

	rec := doJSON(t, srv, http.MethodPost, "/api/simulations", SimulationRequest{Games: 10, Seed: 3, Persist: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.RunID)

	rec = doJSON(t, srv, http.MethodGet, "/api/runs/"+created.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched report.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.Stats, fetched.Stats)

	rec = doJSON(t, srv, http.MethodGet, "/api/runs/"+created.RunID+"/games.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 11)
	assert.Equal(t, report.Header(), rows[0])

	rec = doJSON(t, srv, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.RunID)
}

func TestGetRun_Errors(t *testing.T) {
	rec := doJSON(t, New(Options{}), http.MethodGet, "/api/runs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, New(Options{Store: newMemStore()}), http.MethodGet, "/api/runs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimulate_SaveFailure(t *testing.T) {
	st := newMemStore()
	st.saveErr = fmt.Errorf("connection refused")
	srv := New(Options{Store: st})

	rec := doJSON(t, srv, http.MethodPost, "/api/simulations", SimulationRequest{Games: 2, Persist: true})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestCORS(t *testing.T) {
	srv := New(Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStream(t *testing.T) {
	ts := httptest.NewServer(New(Options{Workers: 2}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/simulations/stream?games=25&policy=shuffled&seed=17"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	seen := map[int]bool{}
	var summary *report.Summary
	for summary == nil {
		var msg StreamMessage
		require.NoError(t, ws.ReadJSON(&msg))
		switch msg.Type {
		case MessageGame:
			require.NotNil(t, msg.Record)
			seen[msg.Record.SimID] = true
		case MessageSummary:
			summary = msg.Summary
		default:
			t.Fatalf("unexpected message %+v", msg)
		}
	}

	assert.Len(t, seen, 25)
	assert.Equal(t, 25, summary.Stats.TotalGames)
	assert.Equal(t, int64(17), summary.Seed)
}

func TestStream_BadQuery(t *testing.T) {
	ts := httptest.NewServer(New(Options{}))
	defer ts.Close()

	for _, q := range []string{"games=abc", "games=0", "games=5&seed=x", "games=5&policy=nope"} {
		resp, err := http.Get(ts.URL + "/api/simulations/stream?" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}
