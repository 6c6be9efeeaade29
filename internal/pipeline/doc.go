// Package pipeline wires the habitd stages into one batch run:
// budgeted selection, compression, secret scrubbing, pattern mining,
// and classification. A run is a pure computation over the sessions it
// is handed; repeated runs on the same input produce the same
// suggestions.
package pipeline
