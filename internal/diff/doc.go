// Package diff contains the pure comparison logic of the pipeline: catalog
// change detection (which items changed between two snapshots, and how
// their order counts moved) and per-order diffing over composite keys.
// Nothing in here performs I/O; the sync engine owns the sequencing.
package diff
