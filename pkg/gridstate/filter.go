package gridstate

import (
	"net/url"
	"strings"
)

// EncodeFilters converts a filter set into a navigation patch covering
// every declared filter field: present values are written, absent ones are
// unset. Columns not declared in the config are ignored. A value whose
// shape contradicts the field's declared kind is treated as empty rather
// than reported: a mis-shaped filter must not break an otherwise working
// grid.
func (c Config) EncodeFilters(f Filters) Patch {
	patch := make(Patch, len(c.Filters))
	for _, field := range c.Filters {
		patch[field.key()] = c.encodeFilterValue(field, f[field.ColumnID])
	}
	return patch
}

// encodeFilterValue produces the param for one field, Unset when the value
// is empty or mis-shaped.
func (c Config) encodeFilterValue(field FilterField, v FilterValue) Param {
	if v.IsZero() {
		return Unset
	}
	if v.Kind() != field.Kind {
		c.Logger.Debug("filter value shape does not match declared kind, treating as empty",
			"column", field.ColumnID, "declared", field.Kind, "got", v.Kind())
		return Unset
	}

	switch field.Kind {
	case FilterArray:
		values := v.ListValues()
		if field.SerializeList != nil {
			values = field.SerializeList(values)
		}
		if len(values) == 0 {
			return Unset
		}
		return List(values...)

	default: // FilterString
		s := strings.TrimSpace(v.Str())
		if field.Serialize != nil {
			s = field.Serialize(s)
		}
		if s == "" {
			return Unset
		}
		return String(s)
	}
}

// DecodeFilters derives the filter set from query parameters. Only present
// filters are materialized; an empty or missing parameter is "no filter",
// never an error.
func (c Config) DecodeFilters(values url.Values) Filters {
	filters := make(Filters)
	for _, field := range c.Filters {
		if v, ok := c.decodeFilterValue(field, values); ok {
			filters[field.ColumnID] = v
		}
	}
	return filters
}

// decodeFilterValue reads one field from the parameter set.
func (c Config) decodeFilterValue(field FilterField, values url.Values) (FilterValue, bool) {
	raw, ok := values[field.key()]
	if !ok || len(raw) == 0 {
		return FilterValue{}, false
	}

	switch field.Kind {
	case FilterArray:
		list := raw
		if field.DeserializeList != nil {
			list = field.DeserializeList(list)
		}
		clean := make([]string, 0, len(list))
		for _, s := range list {
			if s != "" {
				clean = append(clean, s)
			}
		}
		if len(clean) == 0 {
			return FilterValue{}, false
		}
		return ArrayFilter(clean...), true

	default: // FilterString
		s := raw[0]
		if field.Deserialize != nil {
			s = field.Deserialize(s)
		}
		if strings.TrimSpace(s) == "" {
			return FilterValue{}, false
		}
		return StringFilter(s), true
	}
}

// EncodeGlobalFilter converts the global filter into a navigation patch.
// Returns an empty patch when global filtering is disabled.
func (c Config) EncodeGlobalFilter(s string) Patch {
	if !c.GlobalFilter {
		return Patch{}
	}
	if !c.DisableGlobalTrim {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return Patch{c.GlobalFilterKey: Unset}
	}
	return Patch{c.GlobalFilterKey: String(s)}
}

// DecodeGlobalFilter derives the global filter value, "" when disabled or
// absent.
func (c Config) DecodeGlobalFilter(values url.Values) string {
	if !c.GlobalFilter {
		return ""
	}
	s := values.Get(c.GlobalFilterKey)
	if !c.DisableGlobalTrim {
		s = strings.TrimSpace(s)
	}
	return s
}
