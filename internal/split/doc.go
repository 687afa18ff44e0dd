// Package split partitions labelled videos into train, validation, test and
// test-validation sets.
//
// A record whose label contains any event group matching a held-out rule is
// placed in the held-out pool, split by position into test and
// test-validation. Every other record is split by position into train and
// validation. Held-out combinations therefore never reach the train split.
package split
