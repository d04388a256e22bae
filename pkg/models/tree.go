package models

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeParams controls a single regression tree. A nil rng disables feature
// subsampling.
type treeParams struct {
	maxDepth       int // 0 means unlimited
	minSamplesLeaf int
	maxFeatures    int // 0 means all
}

type treeNode struct {
	feature int
	thresh  float64
	value   float64
	left    *treeNode
	right   *treeNode
}

func (n *treeNode) leaf() bool { return n.left == nil }

// regressionTree is a CART tree minimizing within-node variance. It is the
// base learner for the forest, bagging and boosting ensembles and is not
// registered on its own.
type regressionTree struct {
	params treeParams
	rng    *rand.Rand
	root   *treeNode
}

func (t *regressionTree) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(X, y, idx, 0)
	return nil
}

func (t *regressionTree) build(X *mat.Dense, y []float64, idx []int, depth int) *treeNode {
	node := &treeNode{value: meanAt(y, idx)}
	if len(idx) < 2*t.params.minSamplesLeaf {
		return node
	}
	if t.params.maxDepth > 0 && depth >= t.params.maxDepth {
		return node
	}
	if pure(y, idx) {
		return node
	}

	feature, thresh, ok := t.bestSplit(X, y, idx)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < t.params.minSamplesLeaf || len(right) < t.params.minSamplesLeaf {
		return node
	}

	node.feature = feature
	node.thresh = thresh
	node.left = t.build(X, y, left, depth+1)
	node.right = t.build(X, y, right, depth+1)
	return node
}

// bestSplit scans candidate features for the threshold with the lowest
// weighted child variance, using the streaming sum-of-squares update over
// the sorted column.
func (t *regressionTree) bestSplit(X *mat.Dense, y []float64, idx []int) (int, float64, bool) {
	_, cols := X.Dims()

	features := make([]int, cols)
	for j := range features {
		features[j] = j
	}
	if t.params.maxFeatures > 0 && t.params.maxFeatures < cols && t.rng != nil {
		t.rng.Shuffle(cols, func(a, b int) { features[a], features[b] = features[b], features[a] })
		features = features[:t.params.maxFeatures]
	}

	bestScore := math.Inf(1)
	bestFeature, bestThresh := -1, 0.0

	order := make([]int, len(idx))
	for _, f := range features {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X.At(order[a], f) < X.At(order[b], f) })

		var sumL, sqL float64
		var sumR, sqR float64
		for _, i := range order {
			v := y[i]
			sumR += v
			sqR += v * v
		}

		n := len(order)
		for k := 0; k < n-1; k++ {
			v := y[order[k]]
			sumL += v
			sqL += v * v
			sumR -= v
			sqR -= v * v

			a, b := X.At(order[k], f), X.At(order[k+1], f)
			if a == b {
				continue
			}
			nl, nr := float64(k+1), float64(n-k-1)
			score := (sqL - sumL*sumL/nl) + (sqR - sumR*sumR/nr)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThresh = (a + b) / 2
			}
		}
	}
	return bestFeature, bestThresh, bestFeature >= 0
}

func (t *regressionTree) Predict(X *mat.Dense) ([]float64, error) {
	if t.root == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = t.predictRow(X, i)
	}
	return out, nil
}

func (t *regressionTree) predictRow(X *mat.Dense, i int) float64 {
	node := t.root
	for !node.leaf() {
		if X.At(i, node.feature) <= node.thresh {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanAt(y []float64, idx []int) float64 {
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func pure(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}
