package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/gridkit/pkg/datasource"
	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/staging"
)

// Session is the per-connection grid state container. It owns the
// canonical query parameters for one client and implements
// gridstate.Navigator: engine patches are applied to the session's
// parameters and queued as URL messages for the client.
//
// All event handling for a session runs on its read loop goroutine, so
// there is a single logical writer and patches are applied in the order
// the events arrived.
type Session struct {
	ID string

	grid *Grid
	conn *websocket.Conn
	log  *slog.Logger

	engine  *gridstate.Engine
	staging *staging.Manager

	// values is the session's canonical parameter set. Only the read
	// loop goroutine mutates it.
	values url.Values

	// pending URL messages queued by Navigate, flushed with the data
	// frame after each event.
	pending []Message

	// patches and corrections count navigations over the session's
	// lifetime, for metrics.
	patches     int
	corrections int

	writeMu sync.Mutex
	closed  bool
}

// newSession creates a session with the given initial query string.
func newSession(g *Grid, conn *websocket.Conn, initial string) *Session {
	values, err := url.ParseQuery(initial)
	if err != nil {
		// Malformed initial search degrades to empty, per codec policy.
		values = url.Values{}
	}

	id := newSessionID()
	s := &Session{
		ID:     id,
		grid:   g,
		conn:   conn,
		log:    g.log.With("session", id),
		values: values,
	}

	s.engine = gridstate.NewEngine(g.cfg.Grid, func() url.Values { return s.values }, s)
	s.staging = staging.NewManager(g.cfg.Staging, s.engine)
	return s
}

// newSessionID returns a random 16-byte hex ID.
func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Engine returns the session's state engine.
func (s *Session) Engine() *gridstate.Engine { return s.engine }

// Staging returns the session's staged-edit manager.
func (s *Session) Staging() *staging.Manager { return s.staging }

// Values returns the session's current canonical parameters.
func (s *Session) Values() url.Values { return s.values }

// Query returns the canonical encoded query string.
func (s *Session) Query() string { return s.values.Encode() }

// Navigate implements gridstate.Navigator. The patch is applied to the
// session's parameters and mirrored to the client as a URL message.
func (s *Session) Navigate(req gridstate.NavRequest) {
	if req.Search != nil {
		s.values = gridstate.ApplyPatch(s.values, req.Search(s.values))
	}
	s.pending = append(s.pending, Message{
		Type:    MessageURL,
		Query:   s.values.Encode(),
		Replace: req.Replace,
	})
	s.patches++
	if req.Replace {
		s.corrections++
	}
}

// Stats reports the session's lifetime navigation counts: URL patches
// sent and out-of-range page corrections.
func (s *Session) Stats() (patches, corrections int) {
	return s.patches, s.corrections
}

// readLoop processes client events until the connection closes.
func (s *Session) readLoop(handler Handler) {
	defer s.close()

	for {
		if s.grid.cfg.ReadTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.grid.cfg.ReadTimeout))
		}

		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Error("read error", "error", err)
			}
			return
		}

		ctx := context.Background()
		if err := handler(ctx, s, ev); err != nil {
			s.log.Error("event failed", "type", ev.Type, "error", err)
			s.send(Message{Type: MessageError, Error: "failed to load data"})
		}
	}
}

// HandleEvent applies one client event and flushes the resulting URL
// patches and data frame. It is the base handler wrapped by middleware.
func (s *Session) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventSort:
		s.handleSort(ev)

	case EventSearch:
		s.staging.SetSearch(ev.Field, ev.Value)

	case EventFilter:
		s.staging.SetFilter(ev.Field, ev.Values)

	case EventToggle:
		s.staging.ToggleFilter(ev.Field, ev.Value)

	case EventApply:
		if err := s.staging.ApplyAll(ctx); err != nil {
			return err
		}

	case EventReset:
		s.staging.ResetAll()

	case EventPage:
		s.engine.UpdatePagination(func(p gridstate.Pagination) gridstate.Pagination {
			if ev.Page >= 1 {
				p.PageIndex = ev.Page - 1
			}
			return p
		})

	case EventPageSize:
		s.engine.UpdatePagination(func(p gridstate.Pagination) gridstate.Pagination {
			if ev.PageSize >= 1 {
				p.PageSize = ev.PageSize
				p.PageIndex = 0
			}
			return p
		})

	case EventSync:
		s.handleSync(ev)

	default:
		return unknownEventError{t: ev.Type}
	}

	return s.refresh(ctx)
}

// handleSort updates the sort order. An additive event cycles the column
// through ascending, descending, and removed, appending new columns to
// the order; a non-additive event replaces the whole order.
func (s *Session) handleSort(ev Event) {
	s.engine.UpdateSorting(func(prev gridstate.Sorting) gridstate.Sorting {
		if !ev.Additive {
			return gridstate.Sorting{{ColumnID: ev.Column, Desc: ev.Desc}}
		}
		next := make(gridstate.Sorting, 0, len(prev)+1)
		found := false
		for _, e := range prev {
			if e.ColumnID != ev.Column {
				next = append(next, e)
				continue
			}
			found = true
			if !e.Desc {
				next = append(next, gridstate.SortEntry{ColumnID: ev.Column, Desc: true})
			}
			// already descending: drop the column
		}
		if !found {
			next = append(next, gridstate.SortEntry{ColumnID: ev.Column})
		}
		return next
	})
}

// handleSync replaces the session's parameters with the client's query
// string. No URL message is queued back; the client already shows it.
func (s *Session) handleSync(ev Event) {
	values, err := url.ParseQuery(ev.Search)
	if err != nil {
		s.log.Debug("malformed sync query, keeping current parameters", "error", err)
		return
	}
	s.values = values
}

// refresh fetches the current page, corrects an out-of-range page (and
// refetches once if corrected), then flushes pending messages plus the
// data frame.
func (s *Session) refresh(ctx context.Context) error {
	page, err := s.fetch(ctx)
	if err != nil {
		s.flushPending()
		return err
	}

	before := len(s.pending)
	s.engine.EnsurePageInRange(page.TotalPages, s.grid.cfg.ResetTo)
	if len(s.pending) > before {
		// Page was corrected; the window changed.
		if page, err = s.fetch(ctx); err != nil {
			s.flushPending()
			return err
		}
	}

	s.flushPending()
	return s.send(Message{Type: MessageData, Page: &page})
}

func (s *Session) fetch(ctx context.Context) (datasource.Page, error) {
	return s.grid.cfg.Source.Fetch(ctx, s.engine.View())
}

// flushPending sends queued URL messages in order.
func (s *Session) flushPending() {
	pending := s.pending
	s.pending = nil
	for _, msg := range pending {
		if err := s.send(msg); err != nil {
			return
		}
	}
}

// send writes one message to the client.
func (s *Session) send(msg Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return nil
	}
	if s.grid.cfg.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.grid.cfg.WriteTimeout))
	}
	return s.conn.WriteJSON(msg)
}

// close tears the session down.
func (s *Session) close() {
	s.writeMu.Lock()
	if s.closed {
		s.writeMu.Unlock()
		return
	}
	s.closed = true
	s.writeMu.Unlock()

	s.conn.Close()
	s.grid.dropSession(s)
	s.log.Debug("session closed")
}
