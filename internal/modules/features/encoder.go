// README: One-hot encoder for the day_name column; fit once at training time and persisted as JSON.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// OneHotEncoder maps each known category to a fixed position. Categories are
// kept sorted, so the column order depends only on the set of values seen
// during fitting.
type OneHotEncoder struct {
	prefix     string
	categories []string
	index      map[string]int
}

type encoderJSON struct {
	Prefix     string   `json:"prefix"`
	Categories []string `json:"categories"`
}

// FitOneHotEncoder learns the distinct categories in values.
func FitOneHotEncoder(prefix string, values []string) (*OneHotEncoder, error) {
	if len(values) == 0 {
		return nil, errors.New("features: cannot fit encoder on empty input")
	}
	cats := slices.Clone(values)
	slices.Sort(cats)
	cats = slices.Compact(cats)
	return newOneHotEncoder(prefix, cats)
}

func newOneHotEncoder(prefix string, categories []string) (*OneHotEncoder, error) {
	if prefix == "" {
		return nil, errors.New("features: encoder prefix is empty")
	}
	if len(categories) == 0 {
		return nil, errors.New("features: encoder has no categories")
	}
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("features: duplicate category %q", c)
		}
		index[c] = i
	}
	return &OneHotEncoder{prefix: prefix, categories: categories, index: index}, nil
}

func (e *OneHotEncoder) Prefix() string { return e.prefix }

func (e *OneHotEncoder) Len() int { return len(e.categories) }

func (e *OneHotEncoder) Categories() []string { return slices.Clone(e.categories) }

// Transform returns the one-hot vector for value. An unseen value yields an
// all-zero vector.
func (e *OneHotEncoder) Transform(value string) []float64 {
	out := make([]float64, len(e.categories))
	if i, ok := e.index[value]; ok {
		out[i] = 1
	}
	return out
}

// FeatureNames returns the output column names, e.g. day_name_Monday.
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, len(e.categories))
	for i, c := range e.categories {
		names[i] = e.prefix + "_" + c
	}
	return names
}

func (e *OneHotEncoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoderJSON{Prefix: e.prefix, Categories: e.categories})
}

func (e *OneHotEncoder) UnmarshalJSON(b []byte) error {
	var raw encoderJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	dec, err := newOneHotEncoder(raw.Prefix, raw.Categories)
	if err != nil {
		return err
	}
	*e = *dec
	return nil
}

func (e *OneHotEncoder) Save(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal encoder: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadOneHotEncoder(path string) (*OneHotEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder: %w", err)
	}
	var e OneHotEncoder
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode encoder %s: %w", path, err)
	}
	return &e, nil
}
