// Package utils provides common utility functions for catalog-sync.
// It includes helpers for converting loosely typed SQLite column values and the
// 2001-01-01 reference timestamps used by both catalogs.
package utils
