package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Category is a normalized catalog category.
type Category struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	AveragePrice  float64    `json:"averagePrice"`
	Subcategories []Category `json:"subcategories,omitempty"`
}

type rawCategory struct {
	ID            json.RawMessage `json:"id"`
	DefaultLabel  string          `json:"defaultLabel"`
	Label         string          `json:"label"`
	Name          string          `json:"name"`
	AveragePrice  json.RawMessage `json:"averagePrice"`
	Subcategories []rawCategory   `json:"subcategories"`
}

// ErrNoCategories means the payload held no recognizable category list.
var ErrNoCategories = errors.New("catalog payload has no category list")

// NormalizeCategories unwraps the catalog payload. Accepted shapes: a top-level array,
// {"categories": [...]}, {"rows": [...]}, or the first array-valued property of an object.
func NormalizeCategories(raw []byte) ([]Category, error) {
	list, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}
	var items []rawCategory
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return convert(items), nil
}

func unwrapList(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrNoCategories
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	if trimmed[0] != '{' {
		return nil, ErrNoCategories
	}

	var known struct {
		Categories json.RawMessage `json:"categories"`
		Rows       json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(trimmed, &known); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, candidate := range []json.RawMessage{known.Categories, known.Rows} {
		if isArray(candidate) {
			return candidate, nil
		}
	}
	return firstArrayProperty(trimmed)
}

// firstArrayProperty walks the object in document order.
func firstArrayProperty(obj []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		if isArray(value) {
			return value, nil
		}
	}
	return nil, ErrNoCategories
}

func isArray(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) > 0 && t[0] == '['
}

func convert(items []rawCategory) []Category {
	out := make([]Category, 0, len(items))
	for _, it := range items {
		id := scalarString(it.ID)
		if id == "" {
			continue
		}
		label := firstNonEmpty(it.DefaultLabel, it.Label, it.Name, id)
		c := Category{
			ID:           id,
			Label:        label,
			AveragePrice: scalarFloat(it.AveragePrice),
		}
		if len(it.Subcategories) > 0 {
			c.Subcategories = convert(it.Subcategories)
		}
		out = append(out, c)
	}
	return out
}

// scalarString accepts a JSON string or number.
func scalarString(v json.RawMessage) string {
	t := bytes.TrimSpace(v)
	if len(t) == 0 || bytes.Equal(t, []byte("null")) {
		return ""
	}
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(t, &n); err != nil {
		return ""
	}
	return n.String()
}

func scalarFloat(v json.RawMessage) float64 {
	s := scalarString(v)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
