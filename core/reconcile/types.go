package reconcile

import (
	"strings"
	"time"
)

// NaturalKey identifies an asset across both catalogs.
// Folder is a "/"-joined path of collection set names and may be empty.
// Filename is the base file name without extension.
type NaturalKey struct {
	Folder   string `json:"folder"`
	Album    string `json:"album"`
	Filename string `json:"filename"`
}

// String renders the key as folder/album/filename.
func (k NaturalKey) String() string {
	if k.Folder == "" {
		return k.Album + "/" + k.Filename
	}
	return k.Folder + "/" + k.Album + "/" + k.Filename
}

// FolderPath splits Folder into its segments.
func (k NaturalKey) FolderPath() []string {
	if k.Folder == "" {
		return nil
	}
	return strings.Split(k.Folder, "/")
}

// fold returns the form used for matching. The library may report a different
// case for the original file name than the editor, so Filename compares case-insensitively.
func (k NaturalKey) fold() NaturalKey {
	k.Filename = strings.ToLower(k.Filename)
	return k
}

// AssetRecord is one asset read from the source catalog.
type AssetRecord struct {
	// Key is the natural key derived from the asset's collection and file name.
	Key NaturalKey `json:"key"`

	// SourceID is the editor's opaque image id.
	SourceID string `json:"source_id"`

	// LastModifiedAt is the editor's last edit time. Zero means absent.
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// DestinationRecord is one asset read from the destination catalog.
type DestinationRecord struct {
	// Key is the natural key derived from the asset's album and original file name.
	Key NaturalKey `json:"key"`

	// DestinationID is the library's opaque asset id.
	DestinationID string `json:"destination_id"`

	// AddedAt is the library's import time. Zero means absent.
	AddedAt time.Time `json:"added_at"`
}

// Classification is the outcome of joining one natural key across both catalogs.
type Classification string

const (
	// ClassSourceOnly marks an asset that has never been imported.
	ClassSourceOnly Classification = "source_only"
	// ClassDestOnly marks a library asset with no source counterpart. It is never acted upon.
	ClassDestOnly Classification = "dest_only"
	// ClassMatchedUnchanged marks an imported asset whose copy is current.
	ClassMatchedUnchanged Classification = "matched_unchanged"
	// ClassMatchedStale marks an imported asset edited after its import.
	ClassMatchedStale Classification = "matched_stale"
)

// Status names the work a classification implies for the source record.
func (c Classification) Status() string {
	switch c {
	case ClassSourceOnly:
		return "needs-export"
	case ClassMatchedStale:
		return "needs-update"
	case ClassMatchedUnchanged:
		return "unchanged"
	default:
		return "ignored"
	}
}

// Match is the join result for one natural key.
type Match struct {
	Key         NaturalKey         `json:"key"`
	Class       Classification     `json:"class"`
	Source      *AssetRecord       `json:"source,omitempty"`
	Destination *DestinationRecord `json:"destination,omitempty"`
}

// ActionType represents the work planned for a pending asset.
type ActionType string

const (
	// ActionExport renders and imports an asset missing from the library.
	ActionExport ActionType = "export"
	// ActionUpdate re-renders and re-imports an asset edited since its import.
	ActionUpdate ActionType = "update"
)

// Action represents one pending asset.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the asset's natural key.
	Key NaturalKey `json:"key"`

	// SourceID is the editor id used to select the asset for export.
	SourceID string `json:"source_id"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains the match result and the actions derived from it.
type Plan struct {
	// Result is the full join. It is not serialized.
	Result *MatchResult `json:"-"`

	// Actions lists pending work in source order.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// SourceRecords is the number of records read from the source catalog.
	SourceRecords int `json:"source_records"`

	// DestinationRecords is the number of distinct keys in the destination catalog.
	DestinationRecords int `json:"destination_records"`

	// SourceOnly counts assets never imported.
	SourceOnly int `json:"source_only"`

	// DestOnly counts library assets with no source counterpart.
	DestOnly int `json:"dest_only"`

	// Unchanged counts imported assets that are current.
	Unchanged int `json:"unchanged"`

	// Stale counts imported assets edited since their import.
	Stale int `json:"stale"`

	// ExportActions counts planned export actions.
	ExportActions int `json:"export_actions"`

	// UpdateActions counts planned update actions.
	UpdateActions int `json:"update_actions"`
}

// Pending returns the number of planned actions.
func (s PlanSummary) Pending() int {
	return s.ExportActions + s.UpdateActions
}
