package catalog

import (
	"context"
	"testing"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDestination(t *testing.T) {
	f := newLibraryFixture(t)
	f.folder(2, "Lightroom", 1)
	f.folder(3, "Family", 2)
	f.folder(4, "2023", 3)
	f.album(5, "Trip", 4, 0)
	f.album(6, "Loose", 2, 0)
	f.album(7, "Elsewhere", 1, 0) // outside the root folder
	f.album(8, "Deleted", 4, 1)   // trashed album

	f.asset(100, "uuid-100", "IMG1.jpg", 150, 0, 5)
	f.asset(101, "uuid-101", "IMG1.jpg", 250, 0, 5) // re-imported update
	f.asset(102, "uuid-102", "IMG2.JPG", 150, 0, 6)
	f.asset(103, "uuid-103", "IMG3.jpg", 150, 0, 7)
	f.asset(104, "uuid-104", "IMG4.jpg", 150, 1, 5) // trashed asset
	f.asset(105, "uuid-105", "IMG5.jpg", 150, 0, 8)

	records, err := ReadDestination(context.Background(), f.db, Photos8Profile(), "Lightroom")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, reconcile.NaturalKey{Folder: "Family/2023", Album: "Trip", Filename: "IMG1"}, records[0].Key)
	assert.Equal(t, "uuid-101", records[0].DestinationID)
	assert.True(t, utils.ReferenceTime(250.0).Equal(records[0].AddedAt))

	assert.Equal(t, reconcile.NaturalKey{Album: "Loose", Filename: "IMG2"}, records[1].Key)
}

func TestReadDestination_NoRootFolder(t *testing.T) {
	f := newLibraryFixture(t)
	f.album(5, "Trip", 1, 0)
	f.asset(100, "uuid-100", "IMG1.jpg", 150, 0, 5)

	records, err := ReadDestination(context.Background(), f.db, Photos8Profile(), "Lightroom")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadDestination_NestedRootNameIgnored(t *testing.T) {
	f := newLibraryFixture(t)
	f.folder(2, "Archive", 1)
	f.folder(3, "Lightroom", 2) // not top level
	f.album(5, "Trip", 3, 0)
	f.asset(100, "uuid-100", "IMG1.jpg", 150, 0, 5)

	records, err := ReadDestination(context.Background(), f.db, Photos8Profile(), "Lightroom")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetProfileByName(t *testing.T) {
	tests := []struct {
		name      string
		asset     string
		joinTable string
	}{
		{"photos5", "ZGENERICASSET", "Z_26ASSETS"},
		{"photos6", "ZASSET", "Z_26ASSETS"},
		{"photos7", "ZASSET", "Z_27ASSETS"},
		{"photos8", "ZASSET", "Z_28ASSETS"},
		{"", "ZASSET", "Z_28ASSETS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := GetProfileByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.asset, p.AssetTable)
			assert.Equal(t, tt.joinTable, p.JoinTable)
		})
	}

	_, err := GetProfileByName("aperture")
	assert.EqualError(t, err, "unknown destination profile: aperture")
}
