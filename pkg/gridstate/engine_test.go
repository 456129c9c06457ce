package gridstate

import (
	"net/url"
	"reflect"
	"testing"
)

// recordingNav applies patches to an in-memory parameter set, standing in
// for the host router.
type recordingNav struct {
	t        *testing.T
	values   url.Values
	requests []NavRequest
}

func newRecordingNav(t *testing.T, initial string) *recordingNav {
	t.Helper()
	v, err := url.ParseQuery(initial)
	if err != nil {
		t.Fatalf("parse query %q: %v", initial, err)
	}
	return &recordingNav{t: t, values: v}
}

func (n *recordingNav) Navigate(req NavRequest) {
	n.requests = append(n.requests, req)
	if req.Search == nil {
		return
	}
	n.values = ApplyPatch(n.values, req.Search(n.values))
}

func (n *recordingNav) lastReplace() bool {
	if len(n.requests) == 0 {
		n.t.Fatal("no navigation recorded")
	}
	return n.requests[len(n.requests)-1].Replace
}

func newTestEngine(t *testing.T, cfg Config, initial string) (*Engine, *recordingNav) {
	t.Helper()
	nav := newRecordingNav(t, initial)
	engine := NewEngine(cfg, func() url.Values { return nav.values }, nav)
	return engine, nav
}

func TestEngineSetPagination(t *testing.T) {
	e, nav := newTestEngine(t, Config{}, "q=keep")

	e.SetPagination(Pagination{PageIndex: 4, PageSize: 20})

	if got := nav.values.Get("page"); got != "5" {
		t.Errorf("page: got %q, want 5", got)
	}
	if got := nav.values.Get("pageSize"); got != "20" {
		t.Errorf("pageSize: got %q, want 20", got)
	}
	if got := nav.values.Get("q"); got != "keep" {
		t.Error("unrelated parameter was dropped")
	}
	if nav.lastReplace() {
		t.Error("pagination change should push, not replace")
	}
}

func TestEngineUpdatePagination(t *testing.T) {
	e, nav := newTestEngine(t, Config{}, "page=3")

	e.UpdatePagination(func(p Pagination) Pagination {
		p.PageIndex++
		return p
	})

	if got := nav.values.Get("page"); got != "4" {
		t.Errorf("page: got %q, want 4", got)
	}
}

func TestEngineSortResetsPage(t *testing.T) {
	e, nav := newTestEngine(t, Config{SortMode: SortMulti}, "page=7&pageSize=20")

	e.SetSorting(Sorting{{ColumnID: "title"}})

	if _, ok := nav.values["page"]; ok {
		t.Error("sort change must reset page to default (omitted)")
	}
	if got := nav.values.Get("pageSize"); got != "20" {
		t.Error("sort change must not touch pageSize")
	}
	if got := nav.values.Get("sort"); got != "title" {
		t.Errorf("sort: got %q, want title", got)
	}
}

func TestEngineSortModeSwitchCleansOtherMode(t *testing.T) {
	// URL still carries a multi-sort param; a single-mode engine takes
	// over and must clear it in the same patch.
	e, nav := newTestEngine(t, Config{SortMode: SortSingle}, "sort=-a,b")

	e.SetSorting(Sorting{{ColumnID: "a", Desc: true}})

	if _, ok := nav.values["sort"]; ok {
		t.Error("stale multi-sort parameter must be removed")
	}
	if nav.values.Get("sort_by") != "a" || nav.values.Get("sort_order") != "desc" {
		t.Errorf("got %v, want sort_by=a&sort_order=desc", nav.values)
	}
	if len(nav.requests) != 1 {
		t.Errorf("expected one navigation patch, got %d", len(nav.requests))
	}
}

func TestEngineFiltersResetPage(t *testing.T) {
	cfg := Config{Filters: []FilterField{{ColumnID: "status", Kind: FilterArray}}}
	e, nav := newTestEngine(t, cfg, "page=9")

	// Even a change that clears all filters resets the page.
	e.SetColumnFilters(Filters{})

	if _, ok := nav.values["page"]; ok {
		t.Error("filter change must reset page")
	}

	e.SetColumnFilters(Filters{"status": ArrayFilter("todo")})
	if !reflect.DeepEqual(nav.values["status"], []string{"todo"}) {
		t.Errorf("status: got %v", nav.values["status"])
	}
}

func TestEngineUpdateColumnFiltersIsolation(t *testing.T) {
	cfg := Config{Filters: []FilterField{{ColumnID: "status", Kind: FilterArray}}}
	e, nav := newTestEngine(t, cfg, "status=todo")

	before := e.Filters()
	e.UpdateColumnFilters(func(f Filters) Filters {
		f["status"] = ArrayFilter("done")
		return f
	})

	// The updater worked on a copy; the earlier snapshot is untouched.
	if got := before["status"].ListValues(); !reflect.DeepEqual(got, []string{"todo"}) {
		t.Errorf("snapshot mutated: %v", got)
	}
	if got := nav.values["status"]; !reflect.DeepEqual(got, []string{"done"}) {
		t.Errorf("committed: got %v, want [done]", got)
	}
}

func TestEngineGlobalFilter(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{GlobalFilter: true}, "page=4")
		e.SetGlobalFilter(" needle ")
		if got := nav.values.Get("filter"); got != "needle" {
			t.Errorf("filter: got %q, want needle", got)
		}
		if _, ok := nav.values["page"]; ok {
			t.Error("global filter change must reset page")
		}
	})

	t.Run("DisabledIsNoop", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{}, "")
		e.SetGlobalFilter("needle")
		if len(nav.requests) != 0 {
			t.Error("disabled global filter must not navigate")
		}
	})
}

func TestEngineSetFilterSetSinglePatch(t *testing.T) {
	cfg := Config{
		GlobalFilter: true,
		Filters: []FilterField{
			{ColumnID: "status", Kind: FilterArray},
			{ColumnID: "assignee", Kind: FilterString},
		},
	}
	e, nav := newTestEngine(t, cfg, "page=6&assignee=old")

	global := "needle"
	e.SetFilterSet(FilterSet{
		Columns: Filters{"status": ArrayFilter("todo", "done")},
		Global:  &global,
	})

	if len(nav.requests) != 1 {
		t.Fatalf("expected one navigation patch, got %d", len(nav.requests))
	}
	if !reflect.DeepEqual(nav.values["status"], []string{"todo", "done"}) {
		t.Errorf("status: got %v", nav.values["status"])
	}
	if _, ok := nav.values["assignee"]; ok {
		t.Error("assignee absent from the new set must be unset")
	}
	if nav.values.Get("filter") != "needle" {
		t.Errorf("filter: got %q", nav.values.Get("filter"))
	}
	if _, ok := nav.values["page"]; ok {
		t.Error("combined filter change must reset page")
	}
}

func TestEngineView(t *testing.T) {
	cfg := Config{
		SortMode:     SortMulti,
		GlobalFilter: true,
		Filters:      []FilterField{{ColumnID: "status", Kind: FilterArray}},
	}
	e, _ := newTestEngine(t, cfg, "page=3&sort=-createdAt,title&status=todo&filter=abc")

	got := e.View()
	if got.Pagination.PageIndex != 2 {
		t.Errorf("pageIndex: got %d, want 2", got.Pagination.PageIndex)
	}
	want := Sorting{{ColumnID: "createdAt", Desc: true}, {ColumnID: "title"}}
	if !reflect.DeepEqual(got.Sorting, want) {
		t.Errorf("sorting: got %v, want %v", got.Sorting, want)
	}
	if got.GlobalFilter != "abc" {
		t.Errorf("global: got %q", got.GlobalFilter)
	}
	if !reflect.DeepEqual(got.Filters["status"].ListValues(), []string{"todo"}) {
		t.Errorf("filters: got %v", got.Filters)
	}
}

func TestEnsurePageInRange(t *testing.T) {
	t.Run("CorrectsToFirst", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{}, "page=10&pageSize=20")

		e.EnsurePageInRange(3, ResetFirst)

		if len(nav.requests) != 1 {
			t.Fatalf("expected one navigation, got %d", len(nav.requests))
		}
		if !nav.lastReplace() {
			t.Error("page correction must be a replace navigation")
		}
		if _, ok := nav.values["page"]; ok {
			t.Error("page 1 is the default and must be omitted")
		}
		if nav.values.Get("pageSize") != "20" {
			t.Error("correction must not touch pageSize")
		}

		// Idempotent: same pageCount, now in range.
		e.EnsurePageInRange(3, ResetFirst)
		if len(nav.requests) != 1 {
			t.Errorf("second call navigated again: %d requests", len(nav.requests))
		}
	})

	t.Run("CorrectsToLast", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{}, "page=10")

		e.EnsurePageInRange(3, ResetLast)

		if got := nav.values.Get("page"); got != "3" {
			t.Errorf("page: got %q, want 3", got)
		}
		if !nav.lastReplace() {
			t.Error("page correction must be a replace navigation")
		}
	})

	t.Run("ZeroPageCountIsNoop", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{}, "page=10")
		e.EnsurePageInRange(0, ResetFirst)
		if len(nav.requests) != 0 {
			t.Error("pageCount 0 must not navigate")
		}
	})

	t.Run("InRangeIsNoop", func(t *testing.T) {
		e, nav := newTestEngine(t, Config{}, "page=2")
		e.EnsurePageInRange(5, ResetFirst)
		if len(nav.requests) != 0 {
			t.Error("in-range page must not navigate")
		}
	})
}

func TestApplyPatchDoesNotMutatePrev(t *testing.T) {
	prev := url.Values{"a": {"1"}, "b": {"2"}}
	next := ApplyPatch(prev, Patch{"a": Unset, "c": String("3")})

	if got := prev.Get("a"); got != "1" {
		t.Error("ApplyPatch mutated the previous parameter set")
	}
	if _, ok := next["a"]; ok {
		t.Error("unset key present in result")
	}
	if next.Get("c") != "3" || next.Get("b") != "2" {
		t.Errorf("result: got %v", next)
	}
}
