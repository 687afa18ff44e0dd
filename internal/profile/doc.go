// Package profile loads dataset profiles.
//
// A profile is a CUE file with a top-level "profile" struct:
//
//	profile: {
//		name:              "custom"
//		frames:            90
//		windows:           3
//		validation_stride: 3
//		test_val_stride:   4
//		strict_overlap:    false
//		held_out: [
//			{name: "gray_cube", color: "gray", shape: "cube"},
//		]
//	}
//
// Omitted numeric fields take the defaults shown. Two profiles are built in:
// v1 (validation stride 3) and v2 (validation stride 5), both holding out
// the same five combinations.
package profile
