// Package label derives symbolic action labels from normalized scene events.
//
// Derivation runs in four steps:
//
//  1. Coverage: every fixed-size window of the scene must overlap at least
//     one event, otherwise the scene is skipped.
//  2. Overlap: event pairs sharing a start frame are checked against the
//     containment state replayed up to that frame. The first related pair
//     gives a main (container) and a sub (contained) event.
//  3. Linearization: four tokens per event, with the main event placed
//     before the sub event and the sub event's action replaced by the
//     containing-relation symbol. One terminal marker ends the sequence.
//  4. Encoding: tokens become vocabulary indices.
//
// Everything here is a pure function of its inputs. Nothing is shared across
// scenes except the read-only vocabulary.
package label
