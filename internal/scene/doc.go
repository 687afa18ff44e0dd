// Package scene decodes renderer scene records and normalizes their
// per-object movement logs into one ordered event sequence.
//
// Structural problems in a record are soft failures (*SkipError): the scene
// is excluded and batch processing continues.
package scene
