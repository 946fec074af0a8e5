package mapper

import (
	"bytes"
	"encoding/json"
	"net/url"
)

// FilledEntryMap is an insertion-ordered map from entry.<ID> to value.
// Setting an existing key replaces its value and keeps its position.
type FilledEntryMap struct {
	keys   []string
	values map[string]string
}

func NewFilledEntryMap() *FilledEntryMap {
	return &FilledEntryMap{values: map[string]string{}}
}

func (m *FilledEntryMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *FilledEntryMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *FilledEntryMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *FilledEntryMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Form returns the map as a form-encoded body.
func (m *FilledEntryMap) Form() url.Values {
	v := url.Values{}
	if m == nil {
		return v
	}
	for _, k := range m.keys {
		v.Set(k, m.values[k])
	}
	return v
}

// MarshalJSON encodes an object with keys in insertion order.
func (m *FilledEntryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, k := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			vb, err := json.Marshal(m.values[k])
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
