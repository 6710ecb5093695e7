package catalog

import "fmt"

// Source catalog tables and the collection kinds the reader understands.
const (
	TableImages           = "Adobe_images"
	TableFiles            = "AgLibraryFile"
	TableCollections      = "AgLibraryCollection"
	TableCollectionImages = "AgLibraryCollectionImage"

	CreationAlbum = "com.adobe.ag.library.collection"
	CreationGroup = "com.adobe.ag.library.group"
)

// Destination catalog tables shared by every library version.
const (
	TableAttributes = "ZADDITIONALASSETATTRIBUTES"
	TableAlbums     = "ZGENERICALBUM"

	KindAlbum  = 2
	KindFolder = 4000
)

// DestinationProfile maps the library's per-version table names.
type DestinationProfile struct {
	// Name is the profile key (photos5..photos8).
	Name string

	// AssetTable holds one row per asset.
	AssetTable string

	// JoinTable links albums to assets.
	JoinTable string

	// JoinAlbumColumn and JoinAssetColumn are the foreign keys in JoinTable.
	JoinAlbumColumn string
	JoinAssetColumn string
}

// Photos5Profile returns the profile for Photos 5 (macOS 10.15).
func Photos5Profile() DestinationProfile {
	return DestinationProfile{
		Name:            "photos5",
		AssetTable:      "ZGENERICASSET",
		JoinTable:       "Z_26ASSETS",
		JoinAlbumColumn: "Z_26ALBUMS",
		JoinAssetColumn: "Z_34ASSETS",
	}
}

// Photos6Profile returns the profile for Photos 6 (macOS 11).
func Photos6Profile() DestinationProfile {
	return DestinationProfile{
		Name:            "photos6",
		AssetTable:      "ZASSET",
		JoinTable:       "Z_26ASSETS",
		JoinAlbumColumn: "Z_26ALBUMS",
		JoinAssetColumn: "Z_3ASSETS",
	}
}

// Photos7Profile returns the profile for Photos 7 (macOS 12).
func Photos7Profile() DestinationProfile {
	return DestinationProfile{
		Name:            "photos7",
		AssetTable:      "ZASSET",
		JoinTable:       "Z_27ASSETS",
		JoinAlbumColumn: "Z_27ALBUMS",
		JoinAssetColumn: "Z_3ASSETS",
	}
}

// Photos8Profile returns the profile for Photos 8 (macOS 13 and later).
func Photos8Profile() DestinationProfile {
	return DestinationProfile{
		Name:            "photos8",
		AssetTable:      "ZASSET",
		JoinTable:       "Z_28ASSETS",
		JoinAlbumColumn: "Z_28ALBUMS",
		JoinAssetColumn: "Z_3ASSETS",
	}
}

// GetProfileByName returns the destination profile for a library version.
func GetProfileByName(name string) (DestinationProfile, error) {
	switch name {
	case "photos5":
		return Photos5Profile(), nil
	case "photos6":
		return Photos6Profile(), nil
	case "photos7":
		return Photos7Profile(), nil
	case "photos8", "":
		return Photos8Profile(), nil
	default:
		return DestinationProfile{}, fmt.Errorf("unknown destination profile: %s", name)
	}
}
