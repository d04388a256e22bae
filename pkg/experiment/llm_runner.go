package experiment

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/dataset"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/logging"
	"github.com/chembench/molprop/pkg/prompt"
	"github.com/chembench/molprop/pkg/results"
)

// LLMRunner queries one language model over the same trial splits the
// regression battery uses, writing a transcript as it goes.
type LLMRunner struct {
	cfg      *config.Config
	ds       *dataset.Dataset
	llm      core.LLM
	provider string
	runID    string

	// Missing counts trials with no usable prediction (exhausted retries or
	// unparseable replies) per task.
	Missing map[string]int
}

func NewLLMRunner(cfg *config.Config, ds *dataset.Dataset, llm core.LLM, provider, runID string) *LLMRunner {
	return &LLMRunner{
		cfg:      cfg,
		ds:       ds,
		llm:      llm,
		provider: provider,
		runID:    runID,
		Missing:  map[string]int{},
	}
}

// TranscriptPath places one transcript per provider and task under the
// provider's response directory.
func (l *LLMRunner) TranscriptPath(task config.Task) string {
	dir := l.cfg.Output.ResponseDirs[l.provider]
	if dir == "" {
		dir = l.provider + "_response"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s_results.txt", l.provider, task.Key))
}

// RunTask queries the model once per trial. A request that fails after
// retries or returns no parseable number is recorded as missing; the run
// always continues to the next trial.
func (l *LLMRunner) RunTask(ctx context.Context, task config.Task) ([]results.TrialRecord, error) {
	logger := logging.GetLogger()

	y, err := l.ds.Targets(task)
	if err != nil {
		return nil, err
	}

	writer, err := prompt.NewTranscriptWriter(l.TranscriptPath(task))
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	hint := prompt.Hint(l.cfg.LLM.Hint)
	method := l.llm.ModelID()

	var records []results.TrialRecord
	for trial := 1; trial <= l.cfg.Experiment.Trials; trial++ {
		if err := errors.CheckContext(ctx, "model query loop"); err != nil {
			return records, err
		}
		tctx := logging.WithScope(ctx, logging.Scope{Task: task.Key, Trial: trial})

		split, err := NewSplit(trial, l.ds.Len(), l.cfg.Experiment.TrainSize, l.cfg.Experiment.TestSize)
		if err != nil {
			return records, err
		}

		examples := make([]prompt.Example, len(split.Train))
		for i, idx := range split.Train {
			examples[i] = prompt.Example{SMILES: l.ds.Records[idx].SMILES, Value: y[idx]}
		}
		testIdx := split.Test[0]
		target := l.ds.Records[testIdx].SMILES
		truth := y[testIdx]

		text, err := prompt.Build(hint, target, examples)
		if err != nil {
			return records, err
		}

		rec := results.TrialRecord{
			RunID:     l.runID,
			Task:      task.Key,
			Method:    method,
			Trial:     trial,
			SMILES:    target,
			TrueValue: truth,
		}

		response := ""
		resp, genErr := l.llm.Generate(tctx, text,
			core.WithMaxTokens(l.cfg.LLM.MaxTokens),
			core.WithTemperature(l.cfg.LLM.Temperature),
			core.WithTopP(l.cfg.LLM.TopP))
		if genErr != nil {
			logger.Warn(tctx, "generation failed on trial %d: %v", trial, genErr)
			response = "Error: " + genErr.Error()
			rec.FailReason = genErr.Error()
			l.Missing[task.Key]++
		} else {
			response = resp.Content
			if value, ok := prompt.ExtractNumber(response); ok {
				rec.Predicted = value
				rec.OK = true
			} else {
				logger.Warn(tctx, "no numeric value in reply on trial %d", trial)
				rec.FailReason = "unparseable response"
				l.Missing[task.Key]++
			}
		}

		if err := writer.Append(prompt.Entry{
			Iteration: trial,
			SMILES:    target,
			TrueValue: truth,
			Response:  response,
		}); err != nil {
			return records, err
		}
		records = append(records, rec)

		if trial%10 == 0 {
			logger.Info(tctx, "completed trial %d/%d", trial, l.cfg.Experiment.Trials)
		}
	}
	return records, nil
}
