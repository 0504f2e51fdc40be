package extract

import (
	"strings"

	"github.com/sells-group/lead-ingest/internal/model"
	"github.com/sells-group/lead-ingest/internal/normalize"
)

// accessor reads one candidate value out of a raw record. It returns nil when
// the value is not there.
type accessor func(r model.RawRecord) any

// companyParents are the nested objects that carry company facts, in lookup order.
var companyParents = []string{"organization", "company", "org"}

// key reads a top-level field.
func key(k string) accessor {
	return func(r model.RawRecord) any { return r[k] }
}

// path walks nested objects; any non-object hop yields nil.
func path(segs ...string) accessor {
	return func(r model.RawRecord) any {
		var cur any = map[string]any(r)
		for _, k := range segs {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[k]
		}
		return cur
	}
}

// first reads element 0 of an array field, optionally descending into sub.
func first(k string, sub ...string) accessor {
	return func(r model.RawRecord) any {
		arr, ok := r[k].([]any)
		if !ok || len(arr) == 0 {
			return nil
		}
		if len(sub) == 0 {
			return arr[0]
		}
		return path(sub...)(model.RawRecord(asMap(arr[0])))
	}
}

// nameToken returns word i of a whitespace separated name field; i < 0 means
// everything after the first word.
func nameToken(k string, i int) accessor {
	return func(r model.RawRecord) any {
		words := strings.Fields(normalize.SanitizeString(r[k]))
		switch {
		case len(words) == 0:
			return nil
		case i < 0:
			if len(words) < 2 {
				return nil
			}
			return strings.Join(words[1:], " ")
		case i < len(words):
			return words[i]
		}
		return nil
	}
}

// org expands keys into lookups under each company parent object.
func org(keys ...string) []accessor {
	var out []accessor
	for _, p := range companyParents {
		for _, k := range keys {
			out = append(out, path(p, k))
		}
	}
	return out
}

// keys expands names into top-level lookups.
func keys(names ...string) []accessor {
	out := make([]accessor, 0, len(names))
	for _, n := range names {
		out = append(out, key(n))
	}
	return out
}

func concat(lists ...[]accessor) []accessor {
	var out []accessor
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// firstString returns the first accessor value that sanitizes to a non-empty string.
func firstString(r model.RawRecord, accs []accessor) string {
	for _, a := range accs {
		if s := normalize.SanitizeString(a(r)); s != "" {
			return s
		}
	}
	return ""
}

// firstPresent returns the first accessor value that is not nil, blank, or a
// null literal.
func firstPresent(r model.RawRecord, accs []accessor) any {
	for _, a := range accs {
		v := a(r)
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if normalize.SanitizeString(t) == "" {
				continue
			}
		}
		return v
	}
	return nil
}

// firstMapped returns the first accessor value that fn maps to a non-empty string.
func firstMapped(r model.RawRecord, accs []accessor, fn func(any) string) string {
	for _, a := range accs {
		if s := fn(a(r)); s != "" {
			return s
		}
	}
	return ""
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
