// Package batch partitions pending work into bounded batches.
//
// Batches keep the plan's order so repeated runs after a partial failure work through
// the remaining assets predictably.
package batch
