package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/utils"

	"gorm.io/gorm"
)

const albumsQuery = `SELECT Z_PK, ZTITLE, ZKIND, ZPARENTFOLDER FROM ZGENERICALBUM
WHERE COALESCE(ZTRASHEDSTATE, 0) = 0`

// albumNode is a node of the library's folder/album tree.
type albumNode struct {
	ID       int
	Title    string
	Kind     int
	ParentID int
}

// ReadDestination loads every asset placed in an album under the root folder.
// The root folder itself is stripped from the key's Folder. Several copies under one key
// collapse to the most recently added. Records are returned sorted by key.
func ReadDestination(ctx context.Context, db *gorm.DB, profile DestinationProfile, rootFolder string) ([]reconcile.DestinationRecord, error) {
	nodes, err := loadAlbumTree(ctx, db)
	if err != nil {
		return nil, err
	}

	rootID := findRootFolder(nodes, rootFolder)
	if rootID == 0 {
		// Nothing has been imported yet
		return []reconcile.DestinationRecord{}, nil
	}

	albums := make(map[int]reconcile.NaturalKey)
	for id, node := range nodes {
		if node.Kind != KindAlbum {
			continue
		}
		folder, ok := pathUnder(nodes, node.ParentID, rootID)
		if !ok {
			continue
		}
		albums[id] = reconcile.NaturalKey{Folder: folder, Album: node.Title}
	}

	// ZADDEDDATE is declared TIMESTAMP; the cast keeps drivers from converting it to a time
	query := fmt.Sprintf(`SELECT j.%[3]s AS album_id, a.ZUUID AS uuid, CAST(a.ZADDEDDATE AS REAL) AS added_date,
	attr.ZORIGINALFILENAME AS original_filename
FROM %[2]s j
JOIN %[1]s a ON a.Z_PK = j.%[4]s
JOIN %[5]s attr ON attr.ZASSET = a.Z_PK
WHERE COALESCE(a.ZTRASHEDSTATE, 0) = 0
ORDER BY a.Z_PK`, profile.AssetTable, profile.JoinTable, profile.JoinAlbumColumn, profile.JoinAssetColumn, TableAttributes)

	rows, err := queryRows(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", profile.AssetTable, err)
	}

	records := make([]reconcile.DestinationRecord, 0, len(rows))
	for _, row := range rows {
		albumKey, ok := albums[utils.ToInt(row["album_id"])]
		if !ok {
			continue
		}
		name := utils.ToString(row["original_filename"])
		if name == "" {
			continue
		}
		key := albumKey
		key.Filename = strings.TrimSuffix(name, filepath.Ext(name))

		records = append(records, reconcile.DestinationRecord{
			Key:           key,
			DestinationID: utils.ToString(row["uuid"]),
			AddedAt:       utils.ReferenceTime(row["added_date"]),
		})
	}

	records = reconcile.LatestByKey(records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Key.String() < records[j].Key.String()
	})
	return records, nil
}

func loadAlbumTree(ctx context.Context, db *gorm.DB) (map[int]albumNode, error) {
	rows, err := queryRows(ctx, db, albumsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", TableAlbums, err)
	}

	nodes := make(map[int]albumNode, len(rows))
	for _, row := range rows {
		n := albumNode{
			ID:       utils.ToInt(row["Z_PK"]),
			Title:    utils.ToString(row["ZTITLE"]),
			Kind:     utils.ToInt(row["ZKIND"]),
			ParentID: utils.ToInt(row["ZPARENTFOLDER"]),
		}
		nodes[n.ID] = n
	}
	return nodes, nil
}

// findRootFolder returns the lowest-id top-level folder titled name, or 0.
func findRootFolder(nodes map[int]albumNode, name string) int {
	rootID := 0
	for id, n := range nodes {
		if n.Kind != KindFolder || n.Title != name {
			continue
		}
		if parent, ok := nodes[n.ParentID]; ok && parent.Kind == KindFolder {
			continue
		}
		if rootID == 0 || id < rootID {
			rootID = id
		}
	}
	return rootID
}

// pathUnder joins folder titles from parentID up to rootID.
// It reports false when the chain does not reach rootID.
func pathUnder(nodes map[int]albumNode, parentID, rootID int) (string, bool) {
	var segments []string
	seen := make(map[int]bool)
	for id := parentID; id != rootID; {
		node, ok := nodes[id]
		if !ok || node.Kind != KindFolder || seen[id] {
			return "", false
		}
		seen[id] = true
		segments = append([]string{node.Title}, segments...)
		id = node.ParentID
	}
	return strings.Join(segments, "/"), true
}
