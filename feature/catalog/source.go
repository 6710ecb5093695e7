package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/utils"

	"gorm.io/gorm"
)

const sourceImagesQuery = `SELECT i.id_local AS image_id, i.masterImage AS master_image, CAST(i.touchTime AS REAL) AS touch_time,
	f.baseName AS base_name, ci.collection AS collection_id
FROM AgLibraryCollectionImage ci
JOIN AgLibraryCollection c ON c.id_local = ci.collection
JOIN Adobe_images i ON i.id_local = ci.image
JOIN AgLibraryFile f ON f.id_local = i.rootFile
WHERE c.creationId = ?
ORDER BY ci.collection, i.id_local`

const collectionsQuery = `SELECT id_local, name, parent, creationId FROM AgLibraryCollection`

// collection is a node of the source's album/group tree.
type collection struct {
	ID       int
	Name     string
	ParentID int
	Creation string
}

// ReadSource loads every image placed in an album of the editor catalog.
// Records are returned sorted by key. Duplicate keys are passed through for the
// reconciler to reject.
func ReadSource(ctx context.Context, db *gorm.DB, policy VariantPolicy) ([]reconcile.AssetRecord, error) {
	collections, err := loadCollections(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := queryRows(ctx, db, sourceImagesQuery, CreationAlbum)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableCollectionImages, err)
	}

	parsed := make([]sourceRow, 0, len(rows))
	for _, row := range rows {
		touch, _ := utils.ToFloat(row["touch_time"])
		parsed = append(parsed, sourceRow{
			ImageID:      utils.ToInt(row["image_id"]),
			MasterID:     utils.ToInt(row["master_image"]),
			CollectionID: utils.ToInt(row["collection_id"]),
			BaseName:     utils.ToString(row["base_name"]),
			TouchTime:    touch,
		})
	}

	selected := policy.Select(parsed)
	records := make([]reconcile.AssetRecord, 0, len(selected))
	for _, r := range selected {
		album := collections[r.CollectionID]
		records = append(records, reconcile.AssetRecord{
			Key: reconcile.NaturalKey{
				Folder:   folderPath(collections, album.ParentID),
				Album:    album.Name,
				Filename: r.BaseName,
			},
			SourceID:       strconv.Itoa(r.ImageID),
			LastModifiedAt: utils.ReferenceTime(r.TouchTime),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
	return records, nil
}

func loadCollections(ctx context.Context, db *gorm.DB) (map[int]collection, error) {
	rows, err := queryRows(ctx, db, collectionsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableCollections, err)
	}

	out := make(map[int]collection, len(rows))
	for _, row := range rows {
		c := collection{
			ID:       utils.ToInt(row["id_local"]),
			Name:     utils.ToString(row["name"]),
			ParentID: utils.ToInt(row["parent"]),
			Creation: utils.ToString(row["creationId"]),
		}
		out[c.ID] = c
	}
	return out, nil
}

// folderPath walks group parents up to the top and joins their names.
func folderPath(collections map[int]collection, parentID int) string {
	var segments []string
	seen := make(map[int]bool)
	for id := parentID; id != 0 && !seen[id]; {
		seen[id] = true
		group, ok := collections[id]
		if !ok || group.Creation != CreationGroup {
			break
		}
		segments = append([]string{group.Name}, segments...)
		id = group.ParentID
	}
	return strings.Join(segments, "/")
}
