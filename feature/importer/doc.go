// Package importer loads rendered batches into the library application.
//
// Files are grouped by album. For each group the folder chain under the configured root
// folder and the album itself are created when absent, then the files are imported with
// the library's duplicate check enabled. The library reports no per-file result, so files
// it silently drops are only picked up again by the next run's reconciliation.
package importer
