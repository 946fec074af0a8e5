package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// SessionKind marks descriptors that carry page/session state, not inputs.
const SessionKind = 8

// ErrSchemaNotRecognized reports that the literal does not have the nested
// shape of a form definition.
var ErrSchemaNotRecognized = errors.New("form schema not recognized")

// Entry describes one input slot. ID is the POST field suffix (entry.<ID>).
type Entry struct {
	ID       int64    `json:"id"`
	Label    string   `json:"label"`
	Kind     int      `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

// Key returns the form field name for e.
func (e Entry) Key() string { return "entry." + strconv.FormatInt(e.ID, 10) }

// Flatten reads literal[1][1] as the descriptor list and returns one Entry
// per sub-entry. Session descriptors and malformed descriptors are skipped.
func Flatten(literal any) ([]Entry, error) {
	top, ok := literal.([]any)
	if !ok || len(top) < 2 {
		return []Entry{}, ErrSchemaNotRecognized
	}
	body, ok := top[1].([]any)
	if !ok || len(body) < 2 {
		return []Entry{}, ErrSchemaNotRecognized
	}
	descriptors, ok := body[1].([]any)
	if !ok {
		return []Entry{}, ErrSchemaNotRecognized
	}

	entries := make([]Entry, 0, len(descriptors))
	for _, raw := range descriptors {
		d, ok := raw.([]any)
		if !ok || len(d) < 5 {
			continue
		}
		kind, ok := toInt64(d[3])
		if !ok || kind == SessionKind {
			continue
		}
		label, _ := d[1].(string)
		subs, ok := d[4].([]any)
		if !ok {
			continue
		}
		for _, rs := range subs {
			sub, ok := rs.([]any)
			if !ok || len(sub) < 1 {
				continue
			}
			id, ok := toInt64(sub[0])
			if !ok {
				continue
			}
			e := Entry{ID: id, Label: label, Kind: int(kind)}
			if len(sub) > 1 {
				e.Options = options(sub[1])
			}
			if len(sub) > 2 {
				flag, _ := toInt64(sub[2])
				e.Required = flag == 1
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// options returns the first element of each option tuple, or nil when the
// entry is free text.
func options(v any) []string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, o := range list {
		tuple, ok := o.([]any)
		if !ok || len(tuple) == 0 {
			continue
		}
		switch s := tuple[0].(type) {
		case string:
			out = append(out, s)
		case nil:
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

var idRe = regexp.MustCompile(`/forms/d/(?:e/)?([A-Za-z0-9_-]+)`)

// ID extracts the form id from a Google Forms URL, or "" when absent.
func ID(formURL string) string {
	m := idRe.FindStringSubmatch(formURL)
	if m == nil {
		return ""
	}
	return m[1]
}
