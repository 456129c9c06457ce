package gridstate

// ResetTarget selects where the page-range guard lands when the current
// page is out of range.
type ResetTarget uint8

const (
	// ResetFirst corrects to page 1 (the default).
	ResetFirst ResetTarget = iota

	// ResetLast corrects to the last valid page.
	ResetLast
)

// EnsurePageInRange corrects an out-of-range current page, typically after
// filters shrink the result set. If the URL page exceeds pageCount (and
// pageCount > 0), it issues a replace navigation (no new history entry)
// to page 1 or to pageCount per resetTo.
//
// The correction is idempotent: once the page is back in range, further
// calls with the same pageCount are no-ops.
func (e *Engine) EnsurePageInRange(pageCount int, resetTo ResetTarget) {
	if pageCount <= 0 {
		return
	}
	page := e.Pagination().PageIndex + 1
	if page <= pageCount {
		return
	}

	target := 1
	if resetTo == ResetLast {
		target = pageCount
	}

	patch := Patch{e.cfg.PageKey: Unset}
	if target != e.cfg.DefaultPage {
		patch[e.cfg.PageKey] = Number(target)
	}
	e.navigate(patch, true)
}
