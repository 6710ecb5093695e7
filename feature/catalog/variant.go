package catalog

import "fmt"

// sourceRow is one image placed in one album, before key derivation.
type sourceRow struct {
	ImageID      int
	MasterID     int // zero for a primary image
	CollectionID int
	BaseName     string
	TouchTime    float64
}

// canonicalID is the primary image a row belongs to.
func (r sourceRow) canonicalID() int {
	if r.MasterID != 0 {
		return r.MasterID
	}
	return r.ImageID
}

// VariantPolicy decides which edited variant of an image is synchronized.
type VariantPolicy interface {
	Name() string
	// Select keeps at most one row per primary image and album.
	Select(rows []sourceRow) []sourceRow
}

// PrimaryPolicy keeps only primary images and ignores virtual copies.
type PrimaryPolicy struct{}

func (PrimaryPolicy) Name() string { return "primary" }

func (PrimaryPolicy) Select(rows []sourceRow) []sourceRow {
	out := make([]sourceRow, 0, len(rows))
	for _, r := range rows {
		if r.MasterID == 0 {
			out = append(out, r)
		}
	}
	return out
}

// LatestPolicy keeps, per primary image and album, the variant edited most recently.
// Ties go to the primary image, then to the lower image id.
type LatestPolicy struct{}

func (LatestPolicy) Name() string { return "latest" }

func (LatestPolicy) Select(rows []sourceRow) []sourceRow {
	type group struct{ master, collection int }
	best := make(map[group]int, len(rows))
	var order []group

	for i, r := range rows {
		g := group{master: r.canonicalID(), collection: r.CollectionID}
		j, ok := best[g]
		if !ok {
			best[g] = i
			order = append(order, g)
			continue
		}
		if newerVariant(r, rows[j]) {
			best[g] = i
		}
	}

	out := make([]sourceRow, 0, len(order))
	for _, g := range order {
		out = append(out, rows[best[g]])
	}
	return out
}

func newerVariant(candidate, current sourceRow) bool {
	if candidate.TouchTime != current.TouchTime {
		return candidate.TouchTime > current.TouchTime
	}
	if (candidate.MasterID == 0) != (current.MasterID == 0) {
		return candidate.MasterID == 0
	}
	return candidate.ImageID < current.ImageID
}

// GetVariantPolicy returns the policy registered under name.
func GetVariantPolicy(name string) (VariantPolicy, error) {
	switch name {
	case "primary", "":
		return PrimaryPolicy{}, nil
	case "latest":
		return LatestPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown variant policy: %s", name)
	}
}
