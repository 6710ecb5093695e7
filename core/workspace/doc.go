// Package workspace manages the local files of a run: the run lock, working copies of
// both catalogs and the per-batch scratch and control directories.
//
// Working copies are never the live files. Acquire produces a consistent copy with
// VACUUM INTO through modernc.org/sqlite and falls back to a byte copy when the owning
// application keeps the catalog locked. The run lock uses gofrs/flock so a second
// concurrent run fails fast.
package workspace
