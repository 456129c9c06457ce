package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/gridkit/pkg/datasource"
	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/staging"
)

// Config configures a Grid host.
type Config struct {
	// Grid is the URL state configuration shared by every session.
	Grid gridstate.Config

	// Staging configures staged-edit behavior per session.
	Staging staging.Config

	// Source serves page fetches. Required.
	Source datasource.DataSource

	// ResetTo selects where an out-of-range page is corrected to.
	ResetTo gridstate.ResetTarget

	// ReadTimeout bounds how long a session waits for the next client
	// event; zero means no deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds each outgoing frame write.
	WriteTimeout time.Duration

	// CheckOrigin overrides the upgrader's origin check. Nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// Middlewares wrap event handling, first entry outermost.
	Middlewares []Middleware

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Grid hosts grid sessions over WebSocket and serves stateless pages
// over plain HTTP.
type Grid struct {
	cfg     Config
	log     *slog.Logger
	handler Handler

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a Grid from cfg. cfg.Source must be set.
func New(cfg Config) *Grid {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.Staging.GlobalField == "" && cfg.Grid.GlobalFilter {
		cfg.Staging.GlobalField = cfg.Grid.GlobalFilterKey
		if cfg.Staging.GlobalField == "" {
			cfg.Staging.GlobalField = gridstate.DefaultGlobalFilterKey
		}
	}

	g := &Grid{
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*Session),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.CheckOrigin,
	}

	base := func(ctx context.Context, s *Session, ev Event) error {
		return s.HandleEvent(ctx, ev)
	}
	g.handler = chain(base, cfg.Middlewares)
	return g
}

// Routes returns the grid's HTTP routes:
//
//	GET /ws    WebSocket session endpoint
//	GET /data  stateless page fetch for the request's query string
func (g *Grid) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", g.handleWS)
	r.Get("/data", g.handleData)
	return r
}

// SessionCount reports the number of live sessions.
func (g *Grid) SessionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// handleWS upgrades the request and runs a session until it closes. The
// session starts from the request's query string, so a deep link lands
// on the right view before the first event.
func (g *Grid) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("websocket upgrade failed", "error", err)
		return
	}

	s := newSession(g, conn, r.URL.RawQuery)
	g.mu.Lock()
	g.sessions[s.ID] = s
	g.mu.Unlock()

	g.log.Debug("session opened", "session", s.ID, "query", r.URL.RawQuery)

	// Initial data frame so the client renders without sending a sync.
	if err := s.refresh(r.Context()); err != nil {
		s.log.Error("initial fetch failed", "error", err)
		s.send(Message{Type: MessageError, Error: "failed to load data"})
	}

	s.readLoop(g.handler)
}

// handleData serves one page for the view encoded in the query string.
func (g *Grid) handleData(w http.ResponseWriter, r *http.Request) {
	view := gridstate.DecodeView(g.cfg.Grid, r.URL.Query())

	page, err := g.cfg.Source.Fetch(r.Context(), view)
	if err != nil {
		g.log.Error("data fetch failed", "error", err)
		http.Error(w, "failed to load data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		g.log.Debug("response write failed", "error", err)
	}
}

func (g *Grid) dropSession(s *Session) {
	g.mu.Lock()
	delete(g.sessions, s.ID)
	g.mu.Unlock()
}
