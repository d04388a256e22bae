// Package molprop benchmarks classical regression models against language
// model in-context learning on molecular property prediction.
//
// A run draws repeated deterministic train/test splits from a SMILES
// dataset, fits a battery of regression models on several molecular
// representations, optionally queries language models with the same splits
// encoded as few-shot prompts, and aggregates everything into ranked
// mean-absolute-error summaries.
//
// Key Components:
//
//   - chem: SMILES parsing and molecular descriptors, plus the fingerprint
//     subpackage with the four feature representations (ecfp, topo, keys,
//     embed) and a concurrent feature-matrix cache.
//
//   - models: the regression battery behind a common Estimator interface —
//     linear family, tree ensembles, LightGBM, kernel methods, splines,
//     MLPs and baselines, all seeded per trial.
//
//   - experiment: deterministic trial splits, metric helpers, and the two
//     runners (the model battery and the LLM query loop).
//
//   - prompt: the few-shot prompt templates, numeric response extraction,
//     and the per-task transcript files.
//
//   - llms: OpenAI and Anthropic clients behind the core.LLM interface,
//     wrapped in retry with exponential backoff.
//
//   - results: per-trial record store (SQLite), aggregation with ranking,
//     and summary CSV output.
//
// The molprop command under cmd/molprop ties these together:
//
//	molprop run --dataset delaney-processed.csv --ml-only
//	molprop run --config experiment.yaml --tasks logp,mw
//	molprop aggregate --results-dir Results
//	molprop preview-prompt --task logp -n 3
package molprop
