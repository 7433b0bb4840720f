package domain

import (
	"bytes"
	"encoding/json"
)

// Entities maps an entity category to its items, keeping categories in the
// order they were first added. Categories come from backend output, so the
// set is open.
type Entities struct {
	order []string
	items map[string][]string
}

// NewEntities returns an empty mapping.
func NewEntities() Entities {
	return Entities{items: map[string][]string{}}
}

// Set replaces the items of a category, appending the category if new.
func (e *Entities) Set(category string, items []string) {
	if e.items == nil {
		e.items = map[string][]string{}
	}
	if _, ok := e.items[category]; !ok {
		e.order = append(e.order, category)
	}
	e.items[category] = items
}

// Get returns the items of a category.
func (e Entities) Get(category string) ([]string, bool) {
	v, ok := e.items[category]
	return v, ok
}

// Categories returns category names in insertion order.
func (e Entities) Categories() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Len is the number of categories.
func (e Entities) Len() int {
	return len(e.order)
}

// All returns every item across categories, in category order.
func (e Entities) All() []string {
	var out []string
	for _, c := range e.order {
		out = append(out, e.items[c]...)
	}
	return out
}

// MarshalJSON writes the mapping as a JSON object preserving category order.
func (e Entities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range e.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		items := e.items[c]
		if items == nil {
			items = []string{}
		}
		v, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (e *Entities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = NewEntities()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var items []string
		if err := dec.Decode(&items); err != nil {
			return err
		}
		e.Set(key, items)
	}
	_, err := dec.Token()
	return err
}
