package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
	"github.com/ndewijer/SnapCharts-Backend/internal/search"
	"github.com/ndewijer/SnapCharts-Backend/internal/validation"
)

const (
	liveWriteWait      = 10 * time.Second
	livePongWait       = 60 * time.Second
	livePingPeriod     = (livePongWait * 9) / 10
	liveMaxMessageSize = 4096
)

// SessionObserver is notified when live search connections open and close.
type SessionObserver interface {
	LiveSessionOpened()
	LiveSessionClosed()
}

type noopSessionObserver struct{}

func (noopSessionObserver) LiveSessionOpened() {}
func (noopSessionObserver) LiveSessionClosed() {}

// LiveSearchRequest is one message sent by the client: the current search box text.
type LiveSearchRequest struct {
	Query string `json:"query"`
}

// LiveSearchResponse carries the results for the newest query of a connection.
type LiveSearchResponse struct {
	Query   string        `json:"query"`
	Results []model.Asset `json:"results"`
	Error   string        `json:"error,omitempty"`
}

// LiveSearchHandler serves search-as-you-type over a WebSocket. Every
// connection gets its own debounced search session.
type LiveSearchHandler struct {
	searcher search.Searcher
	debounce time.Duration
	upgrader websocket.Upgrader
	observer SessionObserver
	logger   zerolog.Logger
}

// LiveSearchOption configures a LiveSearchHandler.
type LiveSearchOption func(*LiveSearchHandler)

// WithSessionObserver reports connection counts to o.
func WithSessionObserver(o SessionObserver) LiveSearchOption {
	return func(h *LiveSearchHandler) { h.observer = o }
}

// WithLiveSearchLogger sets the connection logger.
func WithLiveSearchLogger(l zerolog.Logger) LiveSearchOption {
	return func(h *LiveSearchHandler) { h.logger = l }
}

// NewLiveSearchHandler creates a LiveSearchHandler. Upgrades are accepted from
// allowedOrigins ("*" allows any) and from clients that send no Origin header.
func NewLiveSearchHandler(searcher search.Searcher, debounce time.Duration, allowedOrigins []string, opts ...LiveSearchOption) *LiveSearchHandler {
	h := &LiveSearchHandler{
		searcher: searcher,
		debounce: debounce,
		observer: noopSessionObserver{},
		logger:   zerolog.Nop(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LiveSearch upgrades the request and streams search results.
//
// Endpoint: GET /api/search/live (WebSocket)
// Client messages: {"query": "app"}
// Server messages: {"query": "app", "results": [...], "error": "..."}
// Only the newest query's results are sent; superseded searches are cancelled.
func (h *LiveSearchHandler) LiveSearch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.observer.LiveSessionOpened()
	defer h.observer.LiveSessionClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var writeMu sync.Mutex
	write := func(msg LiveSearchResponse) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug().Err(err).Msg("live search write failed")
			cancel()
		}
	}

	session := search.NewSession(ctx, h.searcher, h.debounce, func(res search.Result) {
		write(toLiveSearchResponse(res))
	}, search.WithSessionLogger(h.logger))
	defer session.Close()

	go h.keepAlive(ctx, conn, &writeMu)

	conn.SetReadLimit(liveMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("live search connection closed unexpectedly")
			}
			return
		}

		var req LiveSearchRequest
		if err := json.Unmarshal(data, &req); err != nil {
			write(LiveSearchResponse{Results: []model.Asset{}, Error: "invalid message: expected {\"query\": string}"})
			continue
		}
		if err := validation.ValidateSearchQuery(req.Query); err != nil {
			write(LiveSearchResponse{Query: req.Query, Results: []model.Asset{}, Error: err.Error()})
			continue
		}
		session.Input(req.Query)
	}
}

func (h *LiveSearchHandler) keepAlive(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func toLiveSearchResponse(res search.Result) LiveSearchResponse {
	out := LiveSearchResponse{Query: res.Query, Results: res.Assets}
	if out.Results == nil {
		out.Results = []model.Asset{}
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
