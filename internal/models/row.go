package models

import (
	"bytes"
	"encoding/json"
)

// Row is one flat projection result. Keys keeps column insertion order.
type Row struct {
	Keys   []string
	Values map[string]any
}

// NewRow creates an empty row
func NewRow() *Row {
	return &Row{Values: make(map[string]any)}
}

// Set stores v under key. An existing key keeps its position.
func (r *Row) Set(key string, v any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, exists := r.Values[key]; !exists {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = v
}

// Get returns the value stored under key
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Len returns the number of columns in the row
func (r *Row) Len() int {
	return len(r.Keys)
}

// MarshalJSON writes the row as an object in column order
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
