package models

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

func init() {
	Register("KNN", func(Options) Estimator { return &KNN{K: 5} })
}

// KNN predicts the unweighted mean of the K nearest training targets under
// Euclidean distance.
type KNN struct {
	K int

	x *mat.Dense
	y []float64
}

func (k *KNN) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	k.x = mat.DenseCopyOf(X)
	k.y = append([]float64(nil), y...)
	return nil
}

func (k *KNN) Predict(X *mat.Dense) ([]float64, error) {
	if k.x == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	n, _ := k.x.Dims()

	kk := k.K
	if kk > n {
		kk = n
	}

	out := make([]float64, r)
	dists := make([]struct {
		d float64
		i int
	}, n)
	for q := 0; q < r; q++ {
		row := X.RawRowView(q)
		for i := 0; i < n; i++ {
			var d float64
			train := k.x.RawRowView(i)
			for j := range row {
				diff := row[j] - train[j]
				d += diff * diff
			}
			dists[i].d = d
			dists[i].i = i
		}
		sort.Slice(dists, func(a, b int) bool { return dists[a].d < dists[b].d })

		var s float64
		for i := 0; i < kk; i++ {
			s += k.y[dists[i].i]
		}
		out[q] = s / float64(kk)
	}
	return out, nil
}
