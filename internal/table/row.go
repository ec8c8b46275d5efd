package table

import (
	"bytes"
	"encoding/json"
)

// Row is one record of a table: column name to value, remembering the
// order in which columns were first set.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a row from alternating column names and values.
func NewRow(pairs ...string) *Row {
	r := &Row{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Get returns the value of column and whether it is set.
func (r *Row) Get(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value of column or "" when unset.
func (r *Row) Value(column string) string {
	return r.values[column]
}

// Has reports whether column is set on r.
func (r *Row) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Set assigns value to column, appending the column if it is new.
func (r *Row) Set(column, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[column]; !ok {
		r.keys = append(r.keys, column)
	}
	r.values[column] = value
}

// Delete removes column from r.
func (r *Row) Delete(column string) {
	if _, ok := r.values[column]; !ok {
		return
	}
	delete(r.values, column)
	for i, k := range r.keys {
		if k == column {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the columns of r in insertion order.
func (r *Row) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns set on r.
func (r *Row) Len() int {
	return len(r.keys)
}

// Clone returns an independent copy of r.
func (r *Row) Clone() *Row {
	c := &Row{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]string, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether r and o hold the same column values, regardless
// of column order.
func (r *Row) Equal(o *Row) bool {
	if len(r.values) != len(o.values) {
		return false
	}
	for k, v := range r.values {
		if ov, ok := o.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Project returns the values of r for headers, "" for unset columns.
func (r *Row) Project(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = r.values[h]
	}
	return out
}

// IsBlank reports whether every value of r is empty.
func (r *Row) IsBlank() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// MarshalJSON writes r as a JSON object in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
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

// UnmarshalJSON reads a flat JSON object of string values, keeping the
// order of keys as they appear in the document.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = Row{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// Numbers and booleans keep their literal form.
			s = string(raw)
		}
		r.Set(key, s)
	}
	_, err := dec.Token()
	return err
}
