package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/simulation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream message types
const (
	MessageGame    = "game"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one websocket frame of a streamed batch
type StreamMessage struct {
	Type    string                 `json:"type"`
	Record  *simulation.GameRecord `json:"record,omitempty"`
	Summary *report.Summary        `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// streamRequest reads the batch parameters from the query string
func streamRequest(r *http.Request) (SimulationRequest, error) {
	q := r.URL.Query()
	req := SimulationRequest{Policy: q.Get("policy")}

	ints := []struct {
		name string
		dst  *int
	}{
		{"games", &req.Games},
		{"workers", &req.Workers},
		{"max_iterations", &req.MaxIterations},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("invalid %s %q: %w", p.name, v, err)
		}
		*p.dst = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid seed %q: %w", v, err)
		}
		req.Seed = n
	}
	return req, nil
}

// handleStream runs a batch and sends one message per finished game, in
// completion order, followed by the summary
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := streamRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cfg, err := s.batchConfig(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reading is how a websocket notices the peer went away
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	var writeErr error
	cfg.OnResult = func(rec simulation.GameRecord) {
		if writeErr != nil {
			return
		}
		if writeErr = ws.WriteJSON(StreamMessage{Type: MessageGame, Record: &rec}); writeErr != nil {
			cancel()
		}
	}

	start := time.Now()
	records, err := simulation.RunBatchParallel(ctx, cfg)
	if writeErr != nil {
		s.log.WithError(writeErr).Debug("stream client went away")
		return
	}
	if err != nil {
		_ = ws.WriteJSON(StreamMessage{Type: MessageError, Error: err.Error()})
		return
	}

	summary := summarize(cfg, records, time.Since(start))
	if err := ws.WriteJSON(StreamMessage{Type: MessageSummary, Summary: &summary}); err != nil {
		s.log.WithError(err).Debug("failed to send summary")
		return
	}
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
