// README: Gradient-boosted regression trees; model representation and inference.
package boost

import (
	"errors"
	"fmt"
)

var (
	ErrFeatureCount = errors.New("boost: feature count mismatch")
	ErrInvalidModel = errors.New("boost: invalid model")
)

// Node is one node of a flattened tree. Leaves have Feature == -1.
// Rows with value < Threshold go Left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

func (n Node) IsLeaf() bool { return n.Feature < 0 }

type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if row[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Model is an additive ensemble of regression trees over a fixed, named
// feature order. It is never mutated after training or loading.
type Model struct {
	FeatureNames []string           `json:"feature_names"`
	BaseScore    float64            `json:"base_score"`
	Params       Params             `json:"params"`
	Trees        []Tree             `json:"trees"`
	Importances  map[string]float64 `json:"feature_importances,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

func (m *Model) NumFeatures() int { return len(m.FeatureNames) }

// Predict returns the raw regression output for one row.
func (m *Model) Predict(row []float64) (float64, error) {
	if len(row) != len(m.FeatureNames) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(row), len(m.FeatureNames))
	}
	out := m.BaseScore
	for _, t := range m.Trees {
		out += t.predict(row)
	}
	return out, nil
}

// PredictBatch predicts each row independently.
func (m *Model) PredictBatch(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Validate checks tree structure so that inference can neither index out of
// range nor loop. Children always follow their parent in Nodes.
func (m *Model) Validate() error {
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("%w: no feature names", ErrInvalidModel)
	}
	nf := len(m.FeatureNames)
	for ti, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				continue
			}
			if n.Feature >= nf {
				return fmt.Errorf("%w: tree %d node %d uses feature %d of %d", ErrInvalidModel, ti, ni, n.Feature, nf)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has bad children", ErrInvalidModel, ti, ni)
			}
		}
	}
	return nil
}
