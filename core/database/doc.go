// Package database opens catalog files and inspects their schema.
//
// Both catalogs the pipeline reads are SQLite files. Connect wraps GORM's sqlite dialector
// and opens working copies read-only (mode=ro URI) on a single connection.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table through PRAGMA table_info. MissingColumns
// checks the columns a query depends on and backs the catalog schema contract: a missing
// table or column is reported before any record query runs.
//
// # Usage
//
//	db, err := database.Connect(database.Config{Path: copyPath, ReadOnly: true})
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	missing, err := database.MissingColumns(db, "Adobe_images", []string{"id_local", "touchTime"})
package database
