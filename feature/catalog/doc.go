// Package catalog reads the editor and library catalogs into normalized records.
//
// Every read goes through a working copy taken by core/workspace; the live files are
// never opened. Before any record query runs, the copy is checked against a fixed
// contract of tables and columns, and a gap fails with SchemaMismatchError.
//
// # Source catalog
//
// Albums are collections created as com.adobe.ag.library.collection; their folder path
// is the chain of com.adobe.ag.library.group parents. Which edited variant of an image
// is synchronized is a VariantPolicy: "primary" ignores virtual copies, "latest" keeps
// the most recently edited variant.
//
// # Destination catalog
//
// Table names differ per library version and are resolved through a DestinationProfile
// (photos5..photos8). Only albums under the configured root folder are read.
package catalog
