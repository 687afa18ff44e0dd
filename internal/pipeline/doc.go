// Package pipeline runs a labelling batch end to end.
//
// A run discovers scene files in sorted order, derives one label per scene,
// partitions the accepted labels into train/val/test/test_val and writes the
// split files. Skipped scenes are logged and excluded; hard errors (unknown
// symbols, broken label invariants) abort the run.
//
// When configured, every scene outcome is recorded in the run ledger
// (internal/store) and in a per-run Prometheus registry (internal/metrics).
package pipeline
