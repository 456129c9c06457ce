package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/gridkit/pkg/datasource"
	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/staging"
)

func testRows() []datasource.Row {
	return []datasource.Row{
		{"id": 1, "title": "Fix login crash", "status": "todo"},
		{"id": 2, "title": "Write docs", "status": "done"},
		{"id": 3, "title": "Login page polish", "status": "in progress"},
		{"id": 4, "title": "Upgrade deps", "status": "todo"},
		{"id": 5, "title": "Fix logout", "status": "done"},
	}
}

func testGrid(t *testing.T) *Grid {
	t.Helper()
	return New(Config{
		Grid: gridstate.Config{
			SortMode: gridstate.SortMulti,
			Filters: []gridstate.FilterField{
				{ColumnID: "status", Kind: gridstate.FilterArray},
				{ColumnID: "title", Kind: gridstate.FilterString},
			},
			GlobalFilter: true,
		},
		Staging: staging.Config{GlobalField: "filter"},
		Source:  datasource.NewMemory(testRows(), datasource.WithSearchFields("title")),
	})
}

func dialGrid(t *testing.T, g *Grid, query string) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(g.Routes())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if query != "" {
		wsURL += "?" + query
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestWebSocketInitialData(t *testing.T) {
	conn, cleanup := dialGrid(t, testGrid(t), "status=todo")
	defer cleanup()

	msg := readMessage(t, conn)
	if msg.Type != MessageData {
		t.Fatalf("first frame: got %q, want %q", msg.Type, MessageData)
	}
	if msg.Page == nil || msg.Page.Total != 2 {
		t.Errorf("initial page should honor the deep-link filter, got %+v", msg.Page)
	}
}

func TestWebSocketSortEvent(t *testing.T) {
	conn, cleanup := dialGrid(t, testGrid(t), "")
	defer cleanup()

	readMessage(t, conn) // initial data frame

	if err := conn.WriteJSON(Event{Type: EventSort, Column: "title"}); err != nil {
		t.Fatalf("write event: %v", err)
	}

	url := readMessage(t, conn)
	if url.Type != MessageURL {
		t.Fatalf("after sort: got %q, want URL message first", url.Type)
	}
	if url.Replace {
		t.Error("sort should push, not replace")
	}
	if !strings.Contains(url.Query, "sort=title") {
		t.Errorf("query should carry the sort, got %q", url.Query)
	}

	data := readMessage(t, conn)
	if data.Type != MessageData {
		t.Fatalf("after URL: got %q, want data frame", data.Type)
	}
	if data.Page.Rows[0]["title"] != "Fix login crash" {
		t.Errorf("rows should be sorted by title, got first %v", data.Page.Rows[0]["title"])
	}
}

func TestWebSocketPageCorrection(t *testing.T) {
	conn, cleanup := dialGrid(t, testGrid(t), "")
	defer cleanup()

	readMessage(t, conn) // initial data frame

	if err := conn.WriteJSON(Event{Type: EventPage, Page: 99}); err != nil {
		t.Fatalf("write event: %v", err)
	}

	push := readMessage(t, conn)
	if push.Type != MessageURL || push.Replace {
		t.Fatalf("first message should be the push navigation, got %+v", push)
	}
	if !strings.Contains(push.Query, "page=99") {
		t.Errorf("push query should carry the requested page, got %q", push.Query)
	}

	correction := readMessage(t, conn)
	if correction.Type != MessageURL || !correction.Replace {
		t.Fatalf("second message should be the replace correction, got %+v", correction)
	}
	if strings.Contains(correction.Query, "page=") {
		t.Errorf("corrected query should omit the default page, got %q", correction.Query)
	}

	data := readMessage(t, conn)
	if data.Type != MessageData {
		t.Fatalf("last frame: got %q, want data", data.Type)
	}
	if len(data.Page.Rows) != 5 {
		t.Errorf("corrected page rows: got %d, want 5", len(data.Page.Rows))
	}
}

func TestWebSocketFilterEvent(t *testing.T) {
	conn, cleanup := dialGrid(t, testGrid(t), "")
	defer cleanup()

	readMessage(t, conn)

	if err := conn.WriteJSON(Event{Type: EventFilter, Field: "status", Values: []string{"done"}}); err != nil {
		t.Fatalf("write event: %v", err)
	}

	url := readMessage(t, conn)
	if !strings.Contains(url.Query, "status=done") {
		t.Errorf("query should carry the filter, got %q", url.Query)
	}

	data := readMessage(t, conn)
	if data.Page.Total != 2 {
		t.Errorf("filtered total: got %d, want 2", data.Page.Total)
	}
}

func TestHandleSortAdditiveCycle(t *testing.T) {
	g := testGrid(t)
	s := newSession(g, nil, "")

	// Ascending, then descending, then removed for the same column.
	s.handleSort(Event{Type: EventSort, Column: "title", Additive: true})
	if got := s.values.Get("sort"); got != "title" {
		t.Fatalf("first toggle: got %q, want %q", got, "title")
	}
	s.handleSort(Event{Type: EventSort, Column: "title", Additive: true})
	if got := s.values.Get("sort"); got != "-title" {
		t.Fatalf("second toggle: got %q, want %q", got, "-title")
	}
	s.handleSort(Event{Type: EventSort, Column: "title", Additive: true})
	if s.values.Has("sort") {
		t.Fatalf("third toggle should remove the column, got %q", s.values.Get("sort"))
	}

	// A second column appends after the first.
	s.handleSort(Event{Type: EventSort, Column: "status", Additive: true})
	s.handleSort(Event{Type: EventSort, Column: "id", Additive: true})
	if got := s.values.Get("sort"); got != "status,id" {
		t.Errorf("additive order: got %q, want %q", got, "status,id")
	}

	// Non-additive replaces the whole order.
	s.handleSort(Event{Type: EventSort, Column: "title", Desc: true})
	if got := s.values.Get("sort"); got != "-title" {
		t.Errorf("replace: got %q, want %q", got, "-title")
	}
}

func TestHandleSync(t *testing.T) {
	g := testGrid(t)
	s := newSession(g, nil, "status=todo")

	s.handleSync(Event{Type: EventSync, Search: "status=done&page=2"})
	if got := s.values.Get("status"); got != "done" {
		t.Errorf("sync should replace parameters, got status=%q", got)
	}

	// Malformed query keeps the current parameters.
	s.handleSync(Event{Type: EventSync, Search: "a=%zz;b"})
	if got := s.values.Get("status"); got != "done" {
		t.Errorf("malformed sync should be ignored, got status=%q", got)
	}
}

func TestUnknownEvent(t *testing.T) {
	g := testGrid(t)
	s := newSession(g, nil, "")

	err := s.HandleEvent(context.Background(), Event{Type: "bogus"})
	if err == nil {
		t.Fatal("unknown event type should fail")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the type, got %v", err)
	}
	if len(s.pending) != 0 {
		t.Errorf("unknown event should not navigate, got %d pending", len(s.pending))
	}
}

func TestDataEndpoint(t *testing.T) {
	srv := httptest.NewServer(testGrid(t).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/data?status=todo&sort=-id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var page datasource.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total: got %d, want 2", page.Total)
	}
	if len(page.Rows) != 2 || page.Rows[0]["id"].(float64) != 4 {
		t.Errorf("rows should be sorted id desc, got %v", page.Rows)
	}
}

func TestSessionCount(t *testing.T) {
	g := testGrid(t)
	conn, cleanup := dialGrid(t, g, "")

	readMessage(t, conn)
	if got := g.SessionCount(); got != 1 {
		t.Errorf("open: got %d sessions, want 1", got)
	}

	cleanup()
	deadline := time.Now().Add(2 * time.Second)
	for g.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not dropped after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
