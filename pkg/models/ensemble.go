package models

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

func init() {
	Register("RandomForest", func(o Options) Estimator {
		return &RandomForest{Trees: 100, MinSamplesLeaf: 1, rng: rand.New(rand.NewSource(o.RandomState))}
	})
	Register("Bagging", func(o Options) Estimator {
		return &Bagging{Trees: 10, rng: rand.New(rand.NewSource(o.RandomState))}
	})
	Register("GradientBoosting", func(o Options) Estimator {
		return &GradientBoosting{Stages: 100, LearningRate: 0.1, MaxDepth: 3}
	})
	Register("AdaBoost", func(o Options) Estimator {
		return &AdaBoost{Rounds: 50, MaxDepth: 3, rng: rand.New(rand.NewSource(o.RandomState))}
	})
}

// RandomForest averages bootstrapped CART trees with per-split feature
// subsampling of one third of the columns.
type RandomForest struct {
	Trees          int
	MinSamplesLeaf int

	rng   *rand.Rand
	trees []*regressionTree
}

func (f *RandomForest) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n, cols := X.Dims()
	maxFeatures := cols / 3
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	f.trees = make([]*regressionTree, f.Trees)
	for t := range f.trees {
		bx, by := bootstrap(X, y, n, f.rng)
		tree := &regressionTree{
			params: treeParams{minSamplesLeaf: f.MinSamplesLeaf, maxFeatures: maxFeatures},
			rng:    rand.New(rand.NewSource(f.rng.Int63())),
		}
		if err := tree.Fit(bx, by); err != nil {
			return err
		}
		f.trees[t] = tree
	}
	return nil
}

func (f *RandomForest) Predict(X *mat.Dense) ([]float64, error) {
	if f.trees == nil {
		return nil, notFitted()
	}
	return averageTrees(f.trees, X)
}

// Bagging averages unpruned trees over bootstrap resamples, with no feature
// subsampling.
type Bagging struct {
	Trees int

	rng   *rand.Rand
	trees []*regressionTree
}

func (b *Bagging) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n, _ := X.Dims()
	b.trees = make([]*regressionTree, b.Trees)
	for t := range b.trees {
		bx, by := bootstrap(X, y, n, b.rng)
		tree := &regressionTree{params: treeParams{minSamplesLeaf: 1}}
		if err := tree.Fit(bx, by); err != nil {
			return err
		}
		b.trees[t] = tree
	}
	return nil
}

func (b *Bagging) Predict(X *mat.Dense) ([]float64, error) {
	if b.trees == nil {
		return nil, notFitted()
	}
	return averageTrees(b.trees, X)
}

// GradientBoosting fits shallow trees to the residuals of the running
// prediction, shrinking each stage by the learning rate.
type GradientBoosting struct {
	Stages       int
	LearningRate float64
	MaxDepth     int

	base  float64
	trees []*regressionTree
}

func (g *GradientBoosting) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n := len(y)

	g.base = 0
	for _, v := range y {
		g.base += v
	}
	g.base /= float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.base
	}
	resid := make([]float64, n)

	g.trees = make([]*regressionTree, 0, g.Stages)
	for s := 0; s < g.Stages; s++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		tree := &regressionTree{params: treeParams{maxDepth: g.MaxDepth, minSamplesLeaf: 1}}
		if err := tree.Fit(X, resid); err != nil {
			return err
		}
		out, err := tree.Predict(X)
		if err != nil {
			return err
		}
		for i := range pred {
			pred[i] += g.LearningRate * out[i]
		}
		g.trees = append(g.trees, tree)
	}
	return nil
}

func (g *GradientBoosting) Predict(X *mat.Dense) ([]float64, error) {
	if g.trees == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = g.base
	}
	for _, tree := range g.trees {
		p, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] += g.LearningRate * p[i]
		}
	}
	return out, nil
}

// AdaBoost implements AdaBoost.R2 with linear loss: rounds of weighted
// resampling, per-round confidence from the weighted error, and prediction
// by weighted median of the round outputs.
type AdaBoost struct {
	Rounds   int
	MaxDepth int

	rng     *rand.Rand
	trees   []*regressionTree
	weights []float64
}

func (a *AdaBoost) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n := len(y)

	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}

	for round := 0; round < a.Rounds; round++ {
		bx, by := weightedSample(X, y, w, a.rng)
		tree := &regressionTree{params: treeParams{maxDepth: a.MaxDepth, minSamplesLeaf: 1}}
		if err := tree.Fit(bx, by); err != nil {
			return err
		}
		pred, err := tree.Predict(X)
		if err != nil {
			return err
		}

		var maxErr float64
		absErr := make([]float64, n)
		for i := range pred {
			absErr[i] = math.Abs(pred[i] - y[i])
			if absErr[i] > maxErr {
				maxErr = absErr[i]
			}
		}
		if maxErr == 0 {
			// Perfect fit: keep the tree with full confidence and stop.
			a.trees = append(a.trees, tree)
			a.weights = append(a.weights, 1)
			break
		}

		var loss float64
		for i := range absErr {
			loss += w[i] * absErr[i] / maxErr
		}
		if loss >= 0.5 {
			break
		}
		beta := loss / (1 - loss)
		a.trees = append(a.trees, tree)
		a.weights = append(a.weights, math.Log(1/beta))

		var sum float64
		for i := range w {
			w[i] *= math.Pow(beta, 1-absErr[i]/maxErr)
			sum += w[i]
		}
		for i := range w {
			w[i] /= sum
		}
	}

	if len(a.trees) == 0 {
		// Fall back to a single unweighted tree so Predict always works.
		tree := &regressionTree{params: treeParams{maxDepth: a.MaxDepth, minSamplesLeaf: 1}}
		if err := tree.Fit(X, y); err != nil {
			return err
		}
		a.trees = append(a.trees, tree)
		a.weights = append(a.weights, 1)
	}
	return nil
}

func (a *AdaBoost) Predict(X *mat.Dense) ([]float64, error) {
	if a.trees == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()

	preds := make([][]float64, len(a.trees))
	for t, tree := range a.trees {
		p, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		preds[t] = p
	}

	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = weightedMedian(preds, a.weights, i)
	}
	return out, nil
}

func weightedMedian(preds [][]float64, weights []float64, row int) float64 {
	type pv struct {
		v, w float64
	}
	items := make([]pv, len(preds))
	var total float64
	for t := range preds {
		items[t] = pv{v: preds[t][row], w: weights[t]}
		total += weights[t]
	}
	sort.Slice(items, func(a, b int) bool { return items[a].v < items[b].v })

	var acc float64
	for _, it := range items {
		acc += it.w
		if acc >= total/2 {
			return it.v
		}
	}
	return items[len(items)-1].v
}

func bootstrap(X *mat.Dense, y []float64, n int, rng *rand.Rand) (*mat.Dense, []float64) {
	_, cols := X.Dims()
	bx := mat.NewDense(n, cols, nil)
	by := make([]float64, n)
	for i := 0; i < n; i++ {
		src := rng.Intn(n)
		bx.SetRow(i, X.RawRowView(src))
		by[i] = y[src]
	}
	return bx, by
}

// weightedSample draws n rows with probability proportional to w.
func weightedSample(X *mat.Dense, y, w []float64, rng *rand.Rand) (*mat.Dense, []float64) {
	n := len(y)
	_, cols := X.Dims()

	cdf := make([]float64, n)
	var acc float64
	for i, v := range w {
		acc += v
		cdf[i] = acc
	}

	bx := mat.NewDense(n, cols, nil)
	by := make([]float64, n)
	for i := 0; i < n; i++ {
		u := rng.Float64() * acc
		lo, hi := 0, n-1
		for lo < hi {
			mid := (lo + hi) / 2
			if cdf[mid] < u {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		bx.SetRow(i, X.RawRowView(lo))
		by[i] = y[lo]
	}
	return bx, by
}

func averageTrees(trees []*regressionTree, X *mat.Dense) ([]float64, error) {
	r, _ := X.Dims()
	out := make([]float64, r)
	for _, tree := range trees {
		p, err := tree.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] += p[i]
		}
	}
	for i := range out {
		out[i] /= float64(len(trees))
	}
	return out, nil
}
