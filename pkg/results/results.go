// Package results holds per-trial prediction records, aggregates them into
// ranked summaries, and persists both: raw records in SQLite, summaries as
// CSV.
package results

// TrialRecord is one prediction by one method on one trial. Methods cover
// both the regression battery (model + representation) and the language
// models (provider model id + hint, empty representation).
type TrialRecord struct {
	RunID          string
	Task           string
	Representation string
	Method         string
	Trial          int
	SMILES         string
	TrueValue      float64
	Predicted      float64
	// OK is false when the method produced no usable prediction for this
	// trial: a fit failure, an exhausted retry, or an unparseable reply.
	OK         bool
	FailReason string
}

// MethodKey groups records belonging to one summary row.
type MethodKey struct {
	Task           string
	Representation string
	Method         string
}

func (r TrialRecord) key() MethodKey {
	return MethodKey{Task: r.Task, Representation: r.Representation, Method: r.Method}
}
