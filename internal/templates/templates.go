// Package templates holds the event-type to category budget weight table.
package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Weights maps event type -> category id -> share of the initial budget.
type Weights map[string]map[string]float64

// Default returns the built-in weight table.
func Default() Weights {
	return Weights{
		"wedding": {
			"venue":       0.30,
			"catering":    0.25,
			"photography": 0.10,
			"music":       0.08,
			"decoration":  0.10,
			"attire":      0.07,
			"transport":   0.05,
			"stationery":  0.05,
		},
		"corporate": {
			"venue":       0.30,
			"catering":    0.30,
			"audiovisual": 0.15,
			"transport":   0.10,
			"decoration":  0.05,
			"photography": 0.05,
			"staffing":    0.05,
		},
	}
}

// Load reads a weight table from a JSON file. An empty path returns Default.
func Load(path string) (Weights, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template weights: %w", err)
	}
	var w Weights
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse template weights: %w", err)
	}
	normalized := make(Weights, len(w))
	for eventType, cats := range w {
		for cat, weight := range cats {
			if weight < 0 || weight > 1 {
				return nil, fmt.Errorf("template %s: weight for %s out of range: %v", eventType, cat, weight)
			}
		}
		normalized[strings.ToLower(strings.TrimSpace(eventType))] = cats
	}
	return normalized, nil
}

// For returns the weights of an event type; unknown types get an empty map.
func (w Weights) For(eventType string) map[string]float64 {
	if cats, ok := w[strings.ToLower(strings.TrimSpace(eventType))]; ok {
		return cats
	}
	return map[string]float64{}
}
