package catalog

import (
	"path/filepath"
	"testing"

	"catalog-sync/core/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// editorFixture builds a small editor catalog file.
type editorFixture struct {
	t    *testing.T
	db   *gorm.DB
	path string
}

func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Catalog.lrcat")
	db, err := database.Connect(database.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	for _, stmt := range []string{
		"CREATE TABLE Adobe_images (id_local INTEGER PRIMARY KEY, rootFile INTEGER, touchTime REAL, masterImage INTEGER)",
		"CREATE TABLE AgLibraryFile (id_local INTEGER PRIMARY KEY, baseName TEXT, extension TEXT)",
		"CREATE TABLE AgLibraryCollection (id_local INTEGER PRIMARY KEY, name TEXT, parent INTEGER, creationId TEXT)",
		"CREATE TABLE AgLibraryCollectionImage (id_local INTEGER PRIMARY KEY, collection INTEGER, image INTEGER)",
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return &editorFixture{t: t, db: db, path: path}
}

func (f *editorFixture) group(id int, name string, parent int) {
	require.NoError(f.t, f.db.Exec("INSERT INTO AgLibraryCollection VALUES (?, ?, ?, ?)", id, name, nullable(parent), CreationGroup).Error)
}

func (f *editorFixture) album(id int, name string, parent int) {
	require.NoError(f.t, f.db.Exec("INSERT INTO AgLibraryCollection VALUES (?, ?, ?, ?)", id, name, nullable(parent), CreationAlbum).Error)
}

// image adds an image backed by file baseName.ext; touch <= 0 stores NULL.
func (f *editorFixture) image(id int, baseName string, touch float64, master int, albums ...int) {
	var touchVal any
	if touch > 0 {
		touchVal = touch
	}
	require.NoError(f.t, f.db.Exec("INSERT OR IGNORE INTO AgLibraryFile VALUES (?, ?, ?)", id, baseName, "dng").Error)
	fileID := id
	if master != 0 {
		fileID = master
	}
	require.NoError(f.t, f.db.Exec("INSERT INTO Adobe_images VALUES (?, ?, ?, ?)", id, fileID, touchVal, nullable(master)).Error)
	for _, album := range albums {
		require.NoError(f.t, f.db.Exec("INSERT INTO AgLibraryCollectionImage (collection, image) VALUES (?, ?)", album, id).Error)
	}
}

// libraryFixture builds a small library catalog file for the photos8 profile.
type libraryFixture struct {
	t    *testing.T
	db   *gorm.DB
	path string
}

func newLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Photos.sqlite")
	db, err := database.Connect(database.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	for _, stmt := range []string{
		"CREATE TABLE ZASSET (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT, ZADDEDDATE TIMESTAMP, ZTRASHEDSTATE INTEGER)",
		"CREATE TABLE ZADDITIONALASSETATTRIBUTES (Z_PK INTEGER PRIMARY KEY, ZASSET INTEGER, ZORIGINALFILENAME TEXT)",
		"CREATE TABLE ZGENERICALBUM (Z_PK INTEGER PRIMARY KEY, ZTITLE TEXT, ZKIND INTEGER, ZPARENTFOLDER INTEGER, ZTRASHEDSTATE INTEGER)",
		"CREATE TABLE Z_28ASSETS (Z_28ALBUMS INTEGER, Z_3ASSETS INTEGER)",
		// The library's own top-level container
		"INSERT INTO ZGENERICALBUM VALUES (1, NULL, 3999, NULL, 0)",
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return &libraryFixture{t: t, db: db, path: path}
}

func (f *libraryFixture) folder(id int, title string, parent int) {
	require.NoError(f.t, f.db.Exec("INSERT INTO ZGENERICALBUM VALUES (?, ?, ?, ?, 0)", id, title, KindFolder, parent).Error)
}

func (f *libraryFixture) album(id int, title string, parent int, trashed int) {
	require.NoError(f.t, f.db.Exec("INSERT INTO ZGENERICALBUM VALUES (?, ?, ?, ?, ?)", id, title, KindAlbum, parent, trashed).Error)
}

func (f *libraryFixture) asset(id int, uuid, filename string, added float64, trashed int, albums ...int) {
	require.NoError(f.t, f.db.Exec("INSERT INTO ZASSET VALUES (?, ?, ?, ?)", id, uuid, added, trashed).Error)
	require.NoError(f.t, f.db.Exec("INSERT INTO ZADDITIONALASSETATTRIBUTES (ZASSET, ZORIGINALFILENAME) VALUES (?, ?)", id, filename).Error)
	for _, album := range albums {
		require.NoError(f.t, f.db.Exec("INSERT INTO Z_28ASSETS VALUES (?, ?)", album, id).Error)
	}
}

func nullable(id int) any {
	if id == 0 {
		return nil
	}
	return id
}
