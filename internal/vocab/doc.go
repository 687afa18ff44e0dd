// Package vocab holds the fixed symbol vocabulary used to encode labels.
//
// A Vocabulary is an ordered list of symbols: the terminal marker, the
// action symbols (including the containing-relation symbol), materials,
// colors and shapes. Encoding replaces a symbol with its position in the
// list; decoding is the inverse.
//
// Vocabularies are immutable after construction. Default returns the
// process-wide instance, safe for concurrent use without locking.
package vocab
