package gridstate

import (
	"net/url"
	"regexp"
	"strings"
)

// sortTokenRe matches one multi-sort token: an optional leading '-'
// (descending) followed by a column name. Tokens that do not match are
// dropped silently during decode.
var sortTokenRe = regexp.MustCompile(`^(-?)([A-Za-z0-9_][A-Za-z0-9_.-]*)$`)

// EncodeSorting converts a sort order into a navigation patch. The two
// encodings are mutually exclusive: each mode's patch explicitly unsets the
// other mode's keys, so stale parameters cannot resurrect on reload.
func (c Config) EncodeSorting(s Sorting) Patch {
	patch := Patch{
		c.SortByKey:    Unset,
		c.SortOrderKey: Unset,
		c.SortKey:      Unset,
	}

	switch c.SortMode {
	case SortMulti:
		if len(s) == 0 {
			return patch
		}
		tokens := make([]string, 0, len(s))
		for _, entry := range s {
			if entry.ColumnID == "" {
				continue
			}
			tok := entry.ColumnID
			if entry.Desc {
				tok = "-" + tok
			}
			tokens = append(tokens, tok)
		}
		if len(tokens) > 0 {
			patch[c.SortKey] = String(strings.Join(tokens, c.SortDelimiter))
		}

	default: // SortSingle
		if len(s) == 0 || s[0].ColumnID == "" {
			return patch
		}
		patch[c.SortByKey] = String(s[0].ColumnID)
		patch[c.SortOrderKey] = String(sortOrder(s[0].Desc))
	}

	return patch
}

// DecodeSorting derives the sort order from query parameters.
//
// Single mode: a missing sort_by falls back to the configured default sort;
// if none is configured the result is empty. Direction parsing is
// case-insensitive and anything other than "desc" means ascending.
//
// Multi mode: the delimited parameter is split and parsed token by token;
// malformed tokens are dropped without error.
func (c Config) DecodeSorting(values url.Values) Sorting {
	switch c.SortMode {
	case SortMulti:
		raw := values.Get(c.SortKey)
		if raw == "" {
			return c.defaultSorting(0)
		}
		var sorting Sorting
		for _, tok := range strings.Split(raw, c.SortDelimiter) {
			m := sortTokenRe.FindStringSubmatch(strings.TrimSpace(tok))
			if m == nil {
				c.Logger.Debug("dropping malformed sort token", "token", tok)
				continue
			}
			sorting = append(sorting, SortEntry{ColumnID: m[2], Desc: m[1] == "-"})
		}
		if len(sorting) == 0 {
			return c.defaultSorting(0)
		}
		return sorting

	default: // SortSingle
		col := values.Get(c.SortByKey)
		if col == "" {
			return c.defaultSorting(1)
		}
		desc := strings.EqualFold(values.Get(c.SortOrderKey), "desc")
		return Sorting{{ColumnID: col, Desc: desc}}
	}
}

// defaultSorting returns a copy of the configured default sort, truncated
// to limit entries when limit > 0.
func (c Config) defaultSorting(limit int) Sorting {
	if len(c.DefaultSort) == 0 {
		return nil
	}
	n := len(c.DefaultSort)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make(Sorting, n)
	copy(out, c.DefaultSort[:n])
	return out
}

func sortOrder(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}
