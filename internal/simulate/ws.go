package simulate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avoca/mortgage-engine/internal/engine"
	"github.com/avoca/mortgage-engine/internal/metrics"
	"github.com/avoca/mortgage-engine/internal/model"
	"github.com/avoca/mortgage-engine/internal/rateperiod"
)

// WSRequest is a recalculation request sent by a WebSocket client. The
// request ID is echoed back so clients dragging a slider can correlate (and
// discard stale) responses.
type WSRequest struct {
	RequestID string `json:"request_id"`
	engine.Request
}

// WSResult is the response frame for one recalculation. Full schedules are
// too heavy for slider-rate traffic, so only the summary, milestones, and
// warnings go over the wire; clients fetch the full schedule over HTTP once
// the input settles.
type WSResult struct {
	RequestID  string                    `json:"request_id"`
	Available  bool                      `json:"available"`
	Error      string                    `json:"error,omitempty"`
	Summary    *model.SimulationSummary  `json:"summary,omitempty"`
	Milestones []model.Milestone         `json:"milestones,omitempty"`
	MonthCount int                       `json:"month_count"`
	Warnings   []model.SimulationWarning `json:"warnings,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins during development.
	},
}

// HandleWS handles WebSocket upgrade requests at GET /api/v1/ws. Each
// connection gets a request/response loop: the client streams recalculation
// requests as its inputs change and receives a summary frame per request.
func (s *Service) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	metrics.WebSocketClients.Inc()
	defer metrics.WebSocketClients.Dec()
	slog.Info("ws client connected", "remote", r.RemoteAddr)

	// Writes come from both the recalculation loop and the ping ticker.
	var writeMu sync.Mutex
	writeJSONFrame := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(v)
	}

	done := make(chan struct{})
	defer close(done)

	// Ping ticker to keep connection alive through proxies.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("ws client disconnected", "remote", r.RemoteAddr)
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req WSRequest
		if err := json.Unmarshal(data, &req); err != nil {
			writeJSONFrame(WSResult{Error: "invalid request frame"})
			continue
		}

		res := WSResult{RequestID: req.RequestID}
		out, err := s.run(r.Context(), req.Request)
		switch {
		case err == nil:
			res.Available = true
			res.Summary = &out.Summary
			res.Milestones = out.Milestones
			res.MonthCount = len(out.Schedule.Months)
			res.Warnings = out.Schedule.Warnings
		case rateperiod.IsResolutionError(err):
			res.Error = err.Error()
		default:
			res.Error = "simulation failed"
			slog.Error("ws recalculation failed", "err", err)
		}

		if err := writeJSONFrame(res); err != nil {
			return
		}
	}
}
