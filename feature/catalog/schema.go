package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"catalog-sync/core/database"

	"gorm.io/gorm"
)

// Catalog names used in reports and errors.
const (
	SourceCatalog      = "source"
	DestinationCatalog = "destination"
)

// Schema lists, per table, the columns the reader's queries depend on.
type Schema map[string][]string

// SourceSchema returns the editor catalog contract.
func SourceSchema() Schema {
	return Schema{
		TableImages:           {"id_local", "rootFile", "touchTime", "masterImage"},
		TableFiles:            {"id_local", "baseName", "extension"},
		TableCollections:      {"id_local", "name", "parent", "creationId"},
		TableCollectionImages: {"collection", "image"},
	}
}

// DestinationSchema returns the library catalog contract for a profile.
func DestinationSchema(p DestinationProfile) Schema {
	return Schema{
		p.AssetTable:    {"Z_PK", "ZUUID", "ZADDEDDATE", "ZTRASHEDSTATE"},
		TableAttributes: {"ZASSET", "ZORIGINALFILENAME"},
		TableAlbums:     {"Z_PK", "ZTITLE", "ZKIND", "ZPARENTFOLDER", "ZTRASHEDSTATE"},
		p.JoinTable:     {p.JoinAlbumColumn, p.JoinAssetColumn},
	}
}

// SchemaMismatchError reports tables or columns missing from a catalog.
type SchemaMismatchError struct {
	Catalog string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s catalog schema mismatch, missing: %s", e.Catalog, strings.Join(e.Missing, ", "))
}

// IsSchemaMismatch reports whether err carries a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	var mismatch *SchemaMismatchError
	return errors.As(err, &mismatch)
}

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Catalog string                 `json:"catalog"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport is the per-table part of a SchemaReport.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// TableNames returns the report's table names sorted.
func (r *SchemaReport) TableNames() []string {
	names := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InspectSchema checks every table of the contract without stopping at the first problem.
func InspectSchema(db *gorm.DB, catalog string, schema Schema) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Catalog: catalog,
		Matched: true,
		Tables:  make(map[string]TableReport, len(schema)),
	}

	for table, columns := range schema {
		tbl := TableReport{MissingColumns: []string{}, Status: "ok"}

		missing, err := database.MissingColumns(db, table, columns)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			tbl.Status = "error"
			report.Matched = false
			report.Tables[table] = tbl
			continue
		}

		switch {
		case len(missing) == 1 && missing[0] == table:
			tbl.Status = "missing"
			tbl.MissingColumns = append(tbl.MissingColumns, columns...)
			report.Matched = false
		case len(missing) > 0:
			tbl.Status = "error"
			for _, m := range missing {
				tbl.MissingColumns = append(tbl.MissingColumns, strings.TrimPrefix(m, table+"."))
			}
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	sort.Strings(report.Errors)
	return report, nil
}

// CheckSchema returns a *SchemaMismatchError when the contract is not met.
// Inspection failures are returned as plain errors.
func CheckSchema(db *gorm.DB, catalog string, schema Schema) error {
	report, err := InspectSchema(db, catalog, schema)
	if err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		return fmt.Errorf("inspect %s catalog: %s", catalog, strings.Join(report.Errors, "; "))
	}
	if report.Matched {
		return nil
	}

	var missing []string
	for _, table := range report.TableNames() {
		tbl := report.Tables[table]
		if tbl.Status == "missing" {
			missing = append(missing, table)
			continue
		}
		for _, col := range tbl.MissingColumns {
			missing = append(missing, table+"."+col)
		}
	}
	return &SchemaMismatchError{Catalog: catalog, Missing: missing}
}
