package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CategoryAmountMap maps category names to amounts, remembering insertion order.
// The zero value is an empty map ready to use.
type CategoryAmountMap struct {
	keys   []string
	values map[string]float64
}

// NewCategoryAmountMap returns an empty map
func NewCategoryAmountMap() *CategoryAmountMap {
	return &CategoryAmountMap{values: make(map[string]float64)}
}

// Set stores amount for category. An existing category keeps its position.
func (m *CategoryAmountMap) Set(category string, amount float64) {
	if m.values == nil {
		m.values = make(map[string]float64)
	}
	if _, ok := m.values[category]; !ok {
		m.keys = append(m.keys, category)
	}
	m.values[category] = amount
}

// Add accumulates amount into category
func (m *CategoryAmountMap) Add(category string, amount float64) {
	current, _ := m.Get(category)
	m.Set(category, current+amount)
}

// Get returns the amount for category and whether it was present
func (m *CategoryAmountMap) Get(category string) (float64, bool) {
	if m == nil || m.values == nil {
		return 0, false
	}
	v, ok := m.values[category]
	return v, ok
}

// Len returns the number of categories
func (m *CategoryAmountMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the categories in order
func (m *CategoryAmountMap) Keys() []string {
	if m == nil {
		return []string{}
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Values returns the amounts in category order
func (m *CategoryAmountMap) Values() []float64 {
	if m == nil {
		return []float64{}
	}
	values := make([]float64, len(m.keys))
	for i, k := range m.keys {
		values[i] = m.values[k]
	}
	return values
}

// Each calls fn for every entry in order
func (m *CategoryAmountMap) Each(fn func(category string, amount float64)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// MarshalJSON writes the map as a JSON object preserving order
func (m *CategoryAmountMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		v, _ := m.Get(k)
		value, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of numbers, keeping key order.
// Duplicate keys keep their first position and take the last value.
func (m *CategoryAmountMap) UnmarshalJSON(data []byte) error {
	fresh := NewCategoryAmountMap()
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var amount *float64
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		if amount == nil {
			return fmt.Errorf("category %q: amount is null", key)
		}
		fresh.Set(key, *amount)
		return nil
	})
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

// MonthAmounts is one month of a MonthlyCategoryMap
type MonthAmounts struct {
	Month      string
	Categories *CategoryAmountMap
}

// MonthlyCategoryMap maps month labels to per-category amounts, in insertion order
type MonthlyCategoryMap struct {
	months []MonthAmounts
	index  map[string]int
}

// NewMonthlyCategoryMap returns an empty map
func NewMonthlyCategoryMap() *MonthlyCategoryMap {
	return &MonthlyCategoryMap{index: make(map[string]int)}
}

// Month returns the categories for month, creating an empty entry when absent
func (m *MonthlyCategoryMap) Month(month string) *CategoryAmountMap {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[month]; ok {
		return m.months[i].Categories
	}
	cats := NewCategoryAmountMap()
	m.index[month] = len(m.months)
	m.months = append(m.months, MonthAmounts{Month: month, Categories: cats})
	return cats
}

// Set replaces the categories for month. An existing month keeps its position.
func (m *MonthlyCategoryMap) Set(month string, cats *CategoryAmountMap) {
	if cats == nil {
		cats = NewCategoryAmountMap()
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[month]; ok {
		m.months[i].Categories = cats
		return
	}
	m.index[month] = len(m.months)
	m.months = append(m.months, MonthAmounts{Month: month, Categories: cats})
}

// Get returns the categories for month without creating it
func (m *MonthlyCategoryMap) Get(month string) (*CategoryAmountMap, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[month]
	if !ok {
		return nil, false
	}
	return m.months[i].Categories, true
}

// Len returns the number of months
func (m *MonthlyCategoryMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.months)
}

// Months returns the month labels in order
func (m *MonthlyCategoryMap) Months() []string {
	if m == nil {
		return []string{}
	}
	labels := make([]string, len(m.months))
	for i, e := range m.months {
		labels[i] = e.Month
	}
	return labels
}

// Entries returns the months with their categories in order
func (m *MonthlyCategoryMap) Entries() []MonthAmounts {
	if m == nil {
		return nil
	}
	entries := make([]MonthAmounts, len(m.months))
	copy(entries, m.months)
	return entries
}

// MarshalJSON writes the map as nested JSON objects preserving order
func (m *MonthlyCategoryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Month)
		if err != nil {
			return nil, err
		}
		value, err := e.Categories.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("month %q: %w", e.Month, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of category objects, keeping key order
func (m *MonthlyCategoryMap) UnmarshalJSON(data []byte) error {
	fresh := NewMonthlyCategoryMap()
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("month %q: %w", key, err)
		}
		cats := NewCategoryAmountMap()
		if err := cats.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("month %q: %w", key, err)
		}
		fresh.Set(key, cats)
		return nil
	})
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject walks the members of a single JSON object in document order
func decodeObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}
