// Package checker holds the two read-only analyses: a structural lint
// over a single document (heading grammar, depth, numbering contiguity,
// fence balance) and an index-wide duplicate-definition report. Both
// observe immutable snapshots and never mutate anything.
package checker
