package results

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summary is one aggregated row: a method's errors over all its usable
// trials within one task and representation.
type Summary struct {
	Task           string
	Representation string
	Method         string

	MeanMAE   float64
	StdMAE    float64
	MedianMAE float64

	// R2 is computed once over the pooled (prediction, truth) pairs. When
	// the pooled truths carry no variance the metric is undefined and
	// R2Defined is false.
	R2        float64
	R2Defined bool

	Rank int

	Trials   int
	Failures int
}

// Aggregate groups records by (task, representation, method), computes error
// statistics, and assigns ranks within each task across every method variant
// at once, so the language models compete directly with the regression
// battery: mean MAE ascending, ties broken by std ascending then method name
// ascending.
func Aggregate(records []TrialRecord) []Summary {
	groups := map[MethodKey][]TrialRecord{}
	var order []MethodKey
	for _, r := range records {
		k := r.key()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	summaries := make([]Summary, 0, len(order))
	for _, k := range order {
		summaries = append(summaries, summarize(k, groups[k]))
	}

	assignRanks(summaries)
	return summaries
}

func summarize(k MethodKey, records []TrialRecord) Summary {
	s := Summary{Task: k.Task, Representation: k.Representation, Method: k.Method}

	var absErrs []float64
	var truths, preds []float64
	for _, r := range records {
		s.Trials++
		if !r.OK {
			s.Failures++
			continue
		}
		absErrs = append(absErrs, math.Abs(r.Predicted-r.TrueValue))
		truths = append(truths, r.TrueValue)
		preds = append(preds, r.Predicted)
	}

	if len(absErrs) > 0 {
		s.MeanMAE = stat.Mean(absErrs, nil)
		// Population std and mid-pair median, matching numpy's nanstd and
		// nanmedian so summaries line up with the reference results.
		s.StdMAE = stat.PopStdDev(absErrs, nil)
		sorted := append([]float64(nil), absErrs...)
		sort.Float64s(sorted)
		s.MedianMAE = median(sorted)
	} else {
		s.MeanMAE = math.NaN()
		s.StdMAE = math.NaN()
		s.MedianMAE = math.NaN()
	}

	if len(truths) > 1 {
		r2, err := metrics.R2Score(
			mat.NewVecDense(len(truths), truths),
			mat.NewVecDense(len(preds), preds))
		if err == nil {
			s.R2 = r2
			s.R2Defined = true
		}
	}
	return s
}

// median of a sorted slice, averaging the middle pair for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// assignRanks orders summaries within each task. Every (method,
// representation) variant and every language model lands in the same
// ordering, so rank 1 is the best predictor for the task overall. Methods
// with no usable trials sort last.
func assignRanks(summaries []Summary) {
	groups := map[string][]int{}
	for i, s := range summaries {
		groups[s.Task] = append(groups[s.Task], i)
	}

	for _, idxs := range groups {
		sort.SliceStable(idxs, func(a, b int) bool {
			sa, sb := summaries[idxs[a]], summaries[idxs[b]]
			aNaN, bNaN := math.IsNaN(sa.MeanMAE), math.IsNaN(sb.MeanMAE)
			if aNaN != bNaN {
				return bNaN
			}
			if !aNaN && sa.MeanMAE != sb.MeanMAE {
				return sa.MeanMAE < sb.MeanMAE
			}
			if !aNaN && sa.StdMAE != sb.StdMAE {
				return sa.StdMAE < sb.StdMAE
			}
			return sa.Method < sb.Method
		})
		for rank, i := range idxs {
			summaries[i].Rank = rank + 1
		}
	}
}

// SortForReport orders summaries for output: by task, representation, then
// rank.
func SortForReport(summaries []Summary) {
	sort.SliceStable(summaries, func(a, b int) bool {
		if summaries[a].Task != summaries[b].Task {
			return summaries[a].Task < summaries[b].Task
		}
		if summaries[a].Representation != summaries[b].Representation {
			return summaries[a].Representation < summaries[b].Representation
		}
		return summaries[a].Rank < summaries[b].Rank
	})
}
