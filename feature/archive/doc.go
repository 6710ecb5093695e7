// Package archive uploads what degraded batches left behind to object storage.
//
// Objects are written under <prefix>/<run-id>/: the run report as report.json and every
// file of a degraded batch's scratch directory under batch-<id>/.
package archive
