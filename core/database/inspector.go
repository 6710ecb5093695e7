package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column reported by PRAGMA table_info.
type ColumnInfo struct {
	Field   string
	Type    string
	NotNull bool
	PK      bool
}

// GetTableColumns retrieves the column definitions for a given table.
// A table that does not exist yields an empty slice and no error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	type sqliteColumn struct {
		Cid       int
		Name      string
		Type      string
		Notnull   int
		DfltValue *string
		Pk        int
	}
	var sqliteCols []sqliteColumn
	query := fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(tableName, "'", "''"))
	if err := db.Raw(query).Scan(&sqliteCols).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns := make([]ColumnInfo, 0, len(sqliteCols))
	for _, col := range sqliteCols {
		columns = append(columns, ColumnInfo{
			Field:   strings.ToLower(col.Name),
			Type:    strings.ToLower(col.Type),
			NotNull: col.Notnull != 0,
			PK:      col.Pk != 0,
		})
	}
	return columns, nil
}

// MissingColumns compares a table against the columns a query depends on.
// It returns the expected columns that are absent, or the table name alone when the
// table itself does not exist. Names compare case-insensitively.
func MissingColumns(db *gorm.DB, tableName string, expected []string) ([]string, error) {
	actual, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}
	if len(actual) == 0 {
		return []string{tableName}, nil
	}

	present := make(map[string]struct{}, len(actual))
	for _, col := range actual {
		present[col.Field] = struct{}{}
	}

	var missing []string
	for _, name := range expected {
		if _, ok := present[strings.ToLower(name)]; !ok {
			missing = append(missing, tableName+"."+name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
