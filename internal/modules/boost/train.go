// README: Exact greedy, level-wise tree growth for squared-error boosting.
package boost

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Params mirror the XGBoost regressor knobs that matter for this model.
type Params struct {
	Rounds         int     `json:"n_estimators"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"`
	Lambda         float64 `json:"reg_lambda"`
	Gamma          float64 `json:"gamma"`
	MinChildWeight float64 `json:"min_child_weight"`
}

func DefaultParams() Params {
	return Params{
		Rounds:         100,
		LearningRate:   0.3,
		MaxDepth:       6,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
	}
}

func (p Params) validate() error {
	switch {
	case p.Rounds <= 0:
		return errors.New("boost: rounds must be positive")
	case p.LearningRate <= 0:
		return errors.New("boost: learning rate must be positive")
	case p.MaxDepth <= 0:
		return errors.New("boost: max depth must be positive")
	case p.Lambda < 0 || p.Gamma < 0 || p.MinChildWeight < 0:
		return errors.New("boost: regularization terms must be non-negative")
	}
	return nil
}

var ErrEmptyDataset = errors.New("boost: empty training set")

const minSplitGain = 1e-6

// Train fits a squared-error boosted ensemble. Each row of X must hold one
// value per feature name, in that order.
func Train(X [][]float64, y []float64, featureNames []string, p Params) (*Model, error) {
	if len(X) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("boost: %d rows but %d targets", len(X), len(y))
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	nf := len(featureNames)
	for i, row := range X {
		if len(row) != nf {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrFeatureCount, i, len(row), nf)
		}
	}

	g := &grower{
		X:          X,
		grad:       make([]float64, len(X)),
		nodeOf:     make([]int, len(X)),
		sorted:     presort(X, nf),
		p:          p,
		gainSum:    make([]float64, nf),
		splitCount: make([]float64, nf),
	}

	m := &Model{
		FeatureNames: slices.Clone(featureNames),
		BaseScore:    stat.Mean(y, nil),
		Params:       p,
	}
	pred := make([]float64, len(X))
	for i := range pred {
		pred[i] = m.BaseScore
	}
	for r := 0; r < p.Rounds; r++ {
		for i := range g.grad {
			g.grad[i] = pred[i] - y[i]
		}
		tree := g.grow()
		for i, row := range X {
			pred[i] += tree.predict(row)
		}
		m.Trees = append(m.Trees, tree)
	}
	m.Importances = g.importances(featureNames)
	return m, nil
}

// presort returns, per feature, row indices ordered by that feature's value.
func presort(X [][]float64, nf int) [][]int32 {
	sorted := make([][]int32, nf)
	for f := 0; f < nf; f++ {
		idx := make([]int32, len(X))
		for i := range idx {
			idx[i] = int32(i)
		}
		slices.SortStableFunc(idx, func(a, b int32) int {
			return cmp.Compare(X[a][f], X[b][f])
		})
		sorted[f] = idx
	}
	return sorted
}

type stats struct {
	g, h float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      stats
}

// grower holds the buffers reused across boosting rounds. The hessian of
// squared error is 1, so h is a row count.
type grower struct {
	X          [][]float64
	grad       []float64
	nodeOf     []int
	sorted     [][]int32
	p          Params
	gainSum    []float64
	splitCount []float64
}

func (g *grower) score(s stats) float64 {
	return s.g * s.g / (s.h + g.p.Lambda)
}

func (g *grower) grow() Tree {
	t := Tree{Nodes: []Node{{Feature: -1}}}
	root := stats{h: float64(len(g.grad))}
	for i := range g.nodeOf {
		g.nodeOf[i] = 0
		root.g += g.grad[i]
	}
	sums := []stats{root}
	frontier := []int{0}

	for depth := 0; depth < g.p.MaxDepth && len(frontier) > 0; depth++ {
		best := g.findSplits(len(t.Nodes), frontier, sums)

		var next []int
		for _, nd := range frontier {
			b := best[nd]
			if b.feature < 0 || b.gain <= minSplitGain {
				continue
			}
			left := len(t.Nodes)
			t.Nodes = append(t.Nodes, Node{Feature: -1}, Node{Feature: -1})
			t.Nodes[nd] = Node{Feature: b.feature, Threshold: b.threshold, Left: left, Right: left + 1}
			parent := sums[nd]
			sums = append(sums, b.left, stats{g: parent.g - b.left.g, h: parent.h - b.left.h})
			g.gainSum[b.feature] += b.gain
			g.splitCount[b.feature]++
			next = append(next, left, left+1)
		}
		if len(next) == 0 {
			break
		}
		for i, nd := range g.nodeOf {
			if nd < 0 {
				continue
			}
			n := t.Nodes[nd]
			switch {
			case n.IsLeaf():
				g.nodeOf[i] = -1
			case g.X[i][n.Feature] < n.Threshold:
				g.nodeOf[i] = n.Left
			default:
				g.nodeOf[i] = n.Right
			}
		}
		frontier = next
	}

	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			s := sums[i]
			t.Nodes[i].Value = -s.g / (s.h + g.p.Lambda) * g.p.LearningRate
		}
	}
	return t
}

// findSplits scans every feature once in sorted order, accumulating left
// statistics per frontier node, and returns the best split per node.
func (g *grower) findSplits(numNodes int, frontier []int, sums []stats) []split {
	active := make([]bool, numNodes)
	best := make([]split, numNodes)
	for _, nd := range frontier {
		active[nd] = true
		best[nd] = split{feature: -1}
	}
	left := make([]stats, numNodes)
	last := make([]float64, numNodes)
	seen := make([]bool, numNodes)

	for f, order := range g.sorted {
		for _, nd := range frontier {
			left[nd] = stats{}
			seen[nd] = false
		}
		for _, idx := range order {
			nd := g.nodeOf[idx]
			if nd < 0 || !active[nd] {
				continue
			}
			x := g.X[idx][f]
			if seen[nd] && x != last[nd] {
				g.consider(&best[nd], sums[nd], left[nd], f, last[nd], x)
			}
			left[nd].g += g.grad[idx]
			left[nd].h++
			last[nd] = x
			seen[nd] = true
		}
	}
	return best
}

func (g *grower) consider(b *split, parent, l stats, feature int, lo, hi float64) {
	r := stats{g: parent.g - l.g, h: parent.h - l.h}
	if l.h < g.p.MinChildWeight || r.h < g.p.MinChildWeight {
		return
	}
	gain := 0.5*(g.score(l)+g.score(r)-g.score(parent)) - g.p.Gamma
	if gain <= b.gain {
		return
	}
	thr := lo + (hi-lo)/2
	if thr <= lo {
		thr = hi
	}
	*b = split{feature: feature, threshold: thr, gain: gain, left: l}
}

// importances reports average gain per split, normalized to sum to 1.
func (g *grower) importances(names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	var total float64
	avg := make([]float64, len(names))
	for f := range names {
		if g.splitCount[f] > 0 {
			avg[f] = g.gainSum[f] / g.splitCount[f]
			total += avg[f]
		}
	}
	for f, name := range names {
		if total > 0 {
			out[name] = avg[f] / total
		} else {
			out[name] = 0
		}
	}
	return out
}
