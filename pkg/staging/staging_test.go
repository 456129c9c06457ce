package staging

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/gridtest"
)

func testConfig() gridstate.Config {
	return gridstate.Config{
		GlobalFilter: true,
		Filters: []gridstate.FilterField{
			{ColumnID: "status", Kind: gridstate.FilterArray},
			{ColumnID: "priority", Kind: gridstate.FilterArray},
			{ColumnID: "assignee", Kind: gridstate.FilterString},
		},
	}
}

func TestInstantModeCommitsDirectly(t *testing.T) {
	engine, nav := gridtest.NewEngine(t, testConfig(), "")
	m := NewManager(Config{GlobalField: "filter"}, engine)

	m.SetSearch("filter", "needle")
	if got := nav.Values().Get("filter"); got != "needle" {
		t.Errorf("global search: got %q, want needle", got)
	}

	m.ToggleFilter("status", "todo")
	if got := nav.Values()["status"]; !reflect.DeepEqual(got, []string{"todo"}) {
		t.Errorf("status: got %v, want [todo]", got)
	}

	m.ToggleFilter("status", "todo")
	if _, ok := nav.Values()["status"]; ok {
		t.Error("toggling the only option off must unset the parameter")
	}
}

func TestManualModeStagingIsolation(t *testing.T) {
	engine, nav := gridtest.NewEngine(t, testConfig(), "")
	m := NewManager(Config{
		Search:      Manual,
		FilterModes: map[string]Mode{"status": Manual},
		GlobalField: "filter",
	}, engine)

	m.SetSearch("filter", "needle")
	m.ToggleFilter("status", "todo")
	m.ToggleFilter("status", "done")

	// Nothing committed yet: URL untouched, no navigation issued.
	if len(nav.Requests) != 0 {
		t.Fatalf("manual edits navigated: %d requests", len(nav.Requests))
	}
	if engine.GlobalFilter() != "" {
		t.Error("committed global filter changed before apply")
	}

	// Staged values are visible for display.
	if got := m.SearchValue("filter"); got != "needle" {
		t.Errorf("staged search: got %q", got)
	}
	if got := m.FilterValues("status"); !reflect.DeepEqual(got, []string{"todo", "done"}) {
		t.Errorf("staged filter: got %v", got)
	}

	if err := m.ApplyAll(context.Background()); err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}

	// Exactly one patch carrying all staged values.
	if len(nav.Requests) != 1 {
		t.Fatalf("apply issued %d patches, want 1", len(nav.Requests))
	}
	if got := nav.Values().Get("filter"); got != "needle" {
		t.Errorf("committed global: got %q", got)
	}
	if got := nav.Values()["status"]; !reflect.DeepEqual(got, []string{"todo", "done"}) {
		t.Errorf("committed status: got %v", got)
	}

	// Staging is empty again; display falls back to committed values.
	if got := m.FilterValues("status"); !reflect.DeepEqual(got, []string{"todo", "done"}) {
		t.Errorf("post-apply display: got %v", got)
	}
}

func TestManualToggleStartsFromCommitted(t *testing.T) {
	engine, _ := gridtest.NewEngine(t, testConfig(), "status=todo")
	m := NewManager(Config{FilterModes: map[string]Mode{"status": Manual}}, engine)

	m.ToggleFilter("status", "done")
	if got := m.FilterValues("status"); !reflect.DeepEqual(got, []string{"todo", "done"}) {
		t.Errorf("staged: got %v, want committed plus toggled", got)
	}
	// Committed state still has only the original value.
	if got := engine.Filters()["status"].ListValues(); !reflect.DeepEqual(got, []string{"todo"}) {
		t.Errorf("committed: got %v", got)
	}
}

func TestClearStagedKeepsCommitted(t *testing.T) {
	engine, nav := gridtest.NewEngine(t, testConfig(), "status=todo")
	m := NewManager(Config{FilterModes: map[string]Mode{"status": Manual}}, engine)

	m.ToggleFilter("status", "done")
	m.ClearStaged()

	if len(nav.Requests) != 0 {
		t.Error("clearing staged edits must not navigate")
	}
	if got := m.FilterValues("status"); !reflect.DeepEqual(got, []string{"todo"}) {
		t.Errorf("display after clear: got %v, want committed [todo]", got)
	}
}

func TestResetAll(t *testing.T) {
	engine, nav := gridtest.NewEngine(t, testConfig(), "page=4&status=todo&filter=abc")
	m := NewManager(Config{
		FilterModes: map[string]Mode{"status": Manual},
		GlobalField: "filter",
	}, engine)

	m.ToggleFilter("status", "done")
	m.ResetAll()

	if _, ok := nav.Values()["status"]; ok {
		t.Error("committed filter survived reset")
	}
	if _, ok := nav.Values()["filter"]; ok {
		t.Error("committed global filter survived reset")
	}
	if _, ok := nav.Values()["page"]; ok {
		t.Error("reset must return to the first page")
	}
	if m.HasActiveFilters() {
		t.Error("no filters should remain active after reset")
	}
}

func TestHasActiveFilters(t *testing.T) {
	t.Run("Committed", func(t *testing.T) {
		engine, _ := gridtest.NewEngine(t, testConfig(), "status=todo")
		m := NewManager(Config{}, engine)
		if !m.HasActiveFilters() {
			t.Error("committed filter should count as active")
		}
	})

	t.Run("Staged", func(t *testing.T) {
		engine, _ := gridtest.NewEngine(t, testConfig(), "")
		m := NewManager(Config{FilterModes: map[string]Mode{"status": Manual}}, engine)
		m.ToggleFilter("status", "todo")
		if !m.HasActiveFilters() {
			t.Error("staged filter should count as active")
		}
	})

	t.Run("WhitespaceSearchIsInactive", func(t *testing.T) {
		engine, _ := gridtest.NewEngine(t, testConfig(), "")
		m := NewManager(Config{Search: Manual, GlobalField: "filter"}, engine)
		m.SetSearch("filter", "   ")
		if m.HasActiveFilters() {
			t.Error("whitespace-only staged search is not active")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		engine, _ := gridtest.NewEngine(t, testConfig(), "")
		m := NewManager(Config{}, engine)
		if m.HasActiveFilters() {
			t.Error("empty state reported active filters")
		}
	})
}

func TestApplyAllConcurrencyGuard(t *testing.T) {
	engine, nav := gridtest.NewEngine(t, testConfig(), "")

	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	var second error
	m := NewManager(Config{
		Search:      Manual,
		GlobalField: "filter",
		AfterApply: func(ctx context.Context) error {
			startedOnce.Do(func() { close(started) })
			<-release
			return nil
		},
	}, engine)

	m.SetSearch("filter", "one")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.ApplyAll(context.Background()); err != nil {
			t.Errorf("first apply: %v", err)
		}
	}()

	<-started
	// Second apply while the first is still awaiting its callback: no-op.
	second = m.ApplyAll(context.Background())
	if second != nil {
		t.Errorf("second apply: %v", second)
	}
	if got := len(nav.Requests); got != 1 {
		t.Errorf("second apply issued a patch: %d requests", got)
	}

	close(release)
	wg.Wait()

	// After the first completes, applying works again.
	m.SetSearch("filter", "two")
	if err := m.ApplyAll(context.Background()); err != nil {
		t.Fatalf("third apply: %v", err)
	}
	if got := nav.Values().Get("filter"); got != "two" {
		t.Errorf("filter: got %q, want two", got)
	}
}

func TestApplyAllPropagatesCallbackError(t *testing.T) {
	engine, _ := gridtest.NewEngine(t, testConfig(), "")
	wantErr := errors.New("fetch failed")
	m := NewManager(Config{
		Search:      Manual,
		GlobalField: "filter",
		AfterApply:  func(ctx context.Context) error { return wantErr },
	}, engine)

	m.SetSearch("filter", "x")
	if err := m.ApplyAll(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("ApplyAll error: got %v, want %v", err, wantErr)
	}

	// The guard is released even when the callback fails.
	if err := m.ApplyAll(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("subsequent apply: got %v, want %v", err, wantErr)
	}
}
