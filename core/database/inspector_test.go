package database

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	err = db.Exec("CREATE TABLE Adobe_images (id_local INTEGER PRIMARY KEY, rootFile INTEGER NOT NULL, touchTime REAL)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "Adobe_images")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id_local"].Type)
	assert.True(t, colMap["id_local"].PK)
	assert.True(t, colMap["rootfile"].NotNull)
	assert.Equal(t, "real", colMap["touchtime"].Type)

	// PRAGMA table_info returns no rows for a table that does not exist
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_NilDB(t *testing.T) {
	_, err := GetTableColumns(nil, "Adobe_images")
	assert.Error(t, err)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Exec("CREATE TABLE AgLibraryFile (id_local INTEGER PRIMARY KEY, baseName TEXT)").Error)

	missing, err := MissingColumns(db, "AgLibraryFile", []string{"id_local", "baseName", "extension"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AgLibraryFile.extension"}, missing)

	missing, err = MissingColumns(db, "AgLibraryFile", []string{"ID_LOCAL", "basename"})
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = MissingColumns(db, "ZASSET", []string{"Z_PK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ZASSET"}, missing)
}

func TestMissingColumns_QueryFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("select sqlite_version()")).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	db, err := gorm.Open(&sqlite.Dialector{Conn: sqlDB}, &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info('Adobe_images')")).
		WillReturnError(errors.New("disk I/O error"))

	_, err = MissingColumns(db, "Adobe_images", []string{"id_local"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Adobe_images")
	assert.Contains(t, err.Error(), "disk I/O error")
}
