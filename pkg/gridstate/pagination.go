package gridstate

import (
	"net/url"
	"strconv"
)

// EncodePagination converts a pagination window into a navigation patch.
// Values equal to the configured defaults are unset so they never appear
// in the URL.
func (c Config) EncodePagination(p Pagination) Patch {
	patch := Patch{
		c.PageKey:     Unset,
		c.PageSizeKey: Unset,
	}
	if page := p.PageIndex + 1; page != c.DefaultPage {
		patch[c.PageKey] = Number(page)
	}
	if p.PageSize != c.DefaultPageSize {
		patch[c.PageSizeKey] = Number(p.PageSize)
	}
	return patch
}

// DecodePagination derives the pagination window from query parameters.
// Missing or non-numeric values fall back to the defaults; the resulting
// PageIndex is never negative even if the URL carries page 0 or less.
func (c Config) DecodePagination(values url.Values) Pagination {
	page := intParam(values, c.PageKey, c.DefaultPage)
	size := intParam(values, c.PageSizeKey, c.DefaultPageSize)
	if size < 1 {
		size = c.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return Pagination{PageIndex: page - 1, PageSize: size}
}

// intParam reads a numeric parameter, degrading to fallback on anything
// unparseable.
func intParam(values url.Values, key string, fallback int) int {
	raw := values.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
