// Package harness provides conformance testing for labelling runs.
//
// A scenario is a YAML file holding a small batch of inline scenes. The
// harness runs the batch through the real pipeline (normalization, label
// derivation, partitioning and the run ledger) and checks the outcome.
//
// # Scenario Format
//
//	name: containment_swap
//	description: "Contained object's event follows its container's"
//	profile: v1            # built-in name or path relative to this file
//	run_id: run-001        # optional fixed run id
//	scenes:
//	  - name: scene_000.json
//	    video: CATER_000000.avi
//	    objects:
//	      - {instance: Cone_0, color: red, material: metal, shape: cone}
//	    movements:
//	      - object: Cone_0
//	        moves:
//	          - [_contain, Cube_1, 10, 30]
//	expect:
//	  - scene: scene_000.json
//	    tokens: [_contain, red, metal, cone, EOS]
//	    split: val
//	  - scene: scene_001.json
//	    rejected: true
//	    reason: insufficient_coverage
//	assertions:
//	  - type: split_count
//	    split: train
//	    count: 2
//
// Movements are a list rather than a mapping so that object order, which
// decides tie-breaking, is explicit.
//
// # Assertion Types
//
//   - split_count: A split holds exactly count records
//   - skip_count: count scenes were skipped with the given reason
//   - held_out_count: count records were held out by the given rule
//   - accepted_count: count scenes were labelled
//
// A scenario may instead set expect_error to require that the run aborts
// with a hard error.
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite ledger with a fixed
// run id (scenario run_id, or "test-run-default"), so golden snapshots are
// identical across runs.
package harness
