package gridstate

import (
	"net/url"
	"strconv"
)

// paramKind discriminates the value held by a Param.
type paramKind uint8

const (
	kindUnset paramKind = iota
	kindString
	kindList
	kindNumber
)

// Param is one query parameter value in a navigation patch. It is a tagged
// union: a scalar string, a list of strings (repeated parameter), a number,
// or the unset marker. The zero value is Unset; applying it to a parameter
// set removes the key, which is how default values stay out of the URL.
type Param struct {
	kind paramKind
	str  string
	list []string
	num  int
}

// Unset removes the key from the parameter set when the patch is applied.
var Unset = Param{}

// String returns a scalar string parameter.
func String(s string) Param {
	return Param{kind: kindString, str: s}
}

// List returns a multi-value parameter. The slice is copied so patches
// never alias caller-owned state.
func List(values ...string) Param {
	cp := make([]string, len(values))
	copy(cp, values)
	return Param{kind: kindList, list: cp}
}

// Number returns a numeric parameter.
func Number(n int) Param {
	return Param{kind: kindNumber, num: n}
}

// IsUnset reports whether applying this param removes the key.
func (p Param) IsUnset() bool { return p.kind == kindUnset }

// Values returns the wire representation of the param, nil for Unset.
func (p Param) Values() []string {
	switch p.kind {
	case kindString:
		return []string{p.str}
	case kindList:
		cp := make([]string, len(p.list))
		copy(cp, p.list)
		return cp
	case kindNumber:
		return []string{strconv.Itoa(p.num)}
	default:
		return nil
	}
}

// Patch is a partial update to the URL's query parameters. Keys mapped to
// Unset are removed; all other keys in the previous parameter set are
// preserved when the patch is applied.
type Patch map[string]Param

// merge copies every entry of other into p, overwriting on conflict.
func (p Patch) merge(other Patch) {
	for k, v := range other {
		p[k] = v
	}
}

// ApplyPatch merges a patch into a parameter set and returns the result.
// The previous set is not mutated.
func ApplyPatch(prev url.Values, patch Patch) url.Values {
	next := make(url.Values, len(prev)+len(patch))
	for k, vs := range prev {
		cp := make([]string, len(vs))
		copy(cp, vs)
		next[k] = cp
	}
	for k, p := range patch {
		if p.IsUnset() {
			delete(next, k)
			continue
		}
		next[k] = p.Values()
	}
	return next
}

// NavRequest asks the host router for a query-string update.
type NavRequest struct {
	// Search computes the patch from the previous full parameter set.
	// A nil Search means "keep the current search unchanged".
	Search func(prev url.Values) Patch

	// Replace requests a history replace instead of a new entry.
	Replace bool
}

// Navigator is the navigation capability supplied by the host. The host is
// responsible for applying the patch (see ApplyPatch) and reflecting the
// result in its URL or session state.
type Navigator interface {
	Navigate(req NavRequest)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(req NavRequest)

// Navigate calls f.
func (f NavigatorFunc) Navigate(req NavRequest) { f(req) }
