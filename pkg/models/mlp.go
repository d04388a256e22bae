package models

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

func init() {
	for _, arch := range [][]int{
		{256, 64},
		{512, 128},
		{1024, 256},
		{512},
		{512, 512},
		{512, 512, 512},
	} {
		arch := arch
		Register(mlpName(arch), func(o Options) Estimator {
			return &MLP{
				Hidden:       arch,
				Epochs:       200,
				LearningRate: 1e-3,
				rng:          rand.New(rand.NewSource(o.RandomState)),
			}
		})
	}
}

func mlpName(hidden []int) string {
	name := "MLP"
	for _, h := range hidden {
		name += fmt.Sprintf("_%d", h)
	}
	return name
}

// MLP is a fully-connected ReLU network with a linear output, trained
// full-batch with Adam on squared error. Widths come from the registered
// architecture; weights use He initialization from the trial seed.
type MLP struct {
	Hidden       []int
	Epochs       int
	LearningRate float64

	rng    *rand.Rand
	w      []*mat.Dense // weights per layer, (in, out)
	b      [][]float64
	inDim  int
	fitted bool
}

func (m *MLP) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n, d := X.Dims()
	m.inDim = d

	sizes := append([]int{d}, m.Hidden...)
	sizes = append(sizes, 1)
	layers := len(sizes) - 1

	m.w = make([]*mat.Dense, layers)
	m.b = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := sizes[l], sizes[l+1]
		data := make([]float64, in*out)
		std := math.Sqrt(2.0 / float64(in))
		for i := range data {
			data[i] = m.rng.NormFloat64() * std
		}
		m.w[l] = mat.NewDense(in, out, data)
		m.b[l] = make([]float64, out)
	}

	// Adam state per layer.
	mw := make([]*mat.Dense, layers)
	vw := make([]*mat.Dense, layers)
	mb := make([][]float64, layers)
	vb := make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := sizes[l], sizes[l+1]
		mw[l] = mat.NewDense(in, out, nil)
		vw[l] = mat.NewDense(in, out, nil)
		mb[l] = make([]float64, out)
		vb[l] = make([]float64, out)
	}

	const beta1, beta2, eps = 0.9, 0.999, 1e-8

	acts := make([]*mat.Dense, layers+1)
	acts[0] = X
	for epoch := 1; epoch <= m.Epochs; epoch++ {
		// Forward.
		for l := 0; l < layers; l++ {
			out := &mat.Dense{}
			out.Mul(acts[l], m.w[l])
			rows, cols := out.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					v := out.At(i, j) + m.b[l][j]
					if l < layers-1 && v < 0 {
						v = 0
					}
					out.Set(i, j, v)
				}
			}
			acts[l+1] = out
		}

		// Loss gradient at the output: 2 (pred - y) / n.
		delta := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			delta.Set(i, 0, 2*(acts[layers].At(i, 0)-y[i])/float64(n))
		}

		// Backward with Adam updates.
		for l := layers - 1; l >= 0; l-- {
			gw := &mat.Dense{}
			gw.Mul(acts[l].T(), delta)

			_, out := m.w[l].Dims()
			gb := make([]float64, out)
			for j := 0; j < out; j++ {
				for i := 0; i < n; i++ {
					gb[j] += delta.At(i, j)
				}
			}

			var next *mat.Dense
			if l > 0 {
				next = &mat.Dense{}
				next.Mul(delta, m.w[l].T())
				rows, cols := next.Dims()
				for i := 0; i < rows; i++ {
					for j := 0; j < cols; j++ {
						if acts[l].At(i, j) <= 0 {
							next.Set(i, j, 0)
						}
					}
				}
			}

			bc1 := 1 - math.Pow(beta1, float64(epoch))
			bc2 := 1 - math.Pow(beta2, float64(epoch))
			in, _ := m.w[l].Dims()
			for i := 0; i < in; i++ {
				for j := 0; j < out; j++ {
					g := gw.At(i, j)
					mv := beta1*mw[l].At(i, j) + (1-beta1)*g
					vv := beta2*vw[l].At(i, j) + (1-beta2)*g*g
					mw[l].Set(i, j, mv)
					vw[l].Set(i, j, vv)
					m.w[l].Set(i, j, m.w[l].At(i, j)-m.LearningRate*(mv/bc1)/(math.Sqrt(vv/bc2)+eps))
				}
			}
			for j := 0; j < out; j++ {
				g := gb[j]
				mb[l][j] = beta1*mb[l][j] + (1-beta1)*g
				vb[l][j] = beta2*vb[l][j] + (1-beta2)*g*g
				m.b[l][j] -= m.LearningRate * (mb[l][j] / bc1) / (math.Sqrt(vb[l][j]/bc2) + eps)
			}

			delta = next
		}
	}

	m.fitted = true
	return nil
}

func (m *MLP) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, notFitted()
	}
	act := X
	layers := len(m.w)
	for l := 0; l < layers; l++ {
		out := &mat.Dense{}
		out.Mul(act, m.w[l])
		rows, cols := out.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := out.At(i, j) + m.b[l][j]
				if l < layers-1 && v < 0 {
					v = 0
				}
				out.Set(i, j, v)
			}
		}
		act = out
	}

	r, _ := act.Dims()
	pred := make([]float64, r)
	for i := 0; i < r; i++ {
		pred[i] = act.At(i, 0)
	}
	return pred, nil
}
