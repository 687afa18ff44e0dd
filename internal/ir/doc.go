// Package ir provides canonical serialization and content-addressed identity
// for labelgen records.
//
// This package imports nothing internal. All other internal packages that
// need stable ids (the store, the pipeline) go through it.
//
// Key design constraints:
//   - NO float types anywhere; labels and frames are integers
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized before serialization
package ir
