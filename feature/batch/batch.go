package batch

import (
	"fmt"
	"strings"

	"catalog-sync/core/reconcile"

	"github.com/google/uuid"
)

// DefaultSize is the batch size used when none is configured.
const DefaultSize = 30

// Item is one pending asset inside a batch.
type Item struct {
	Key      reconcile.NaturalKey `json:"key"`
	SourceID string               `json:"source_id"`
	Action   reconcile.ActionType `json:"action"`
}

// Batch is an ordered, bounded group of pending assets processed through one
// export/import cycle. Token correlates the editor's completion signal with the batch.
type Batch struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
	Items []Item `json:"items"`
}

// SourceIDs returns the editor ids of the batch in order.
func (b Batch) SourceIDs() []string {
	ids := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.SourceID)
	}
	return ids
}

// Len returns the number of items.
func (b Batch) Len() int {
	return len(b.Items)
}

// MakeBatches partitions pending actions into batches of at most size items, keeping
// input order. The editor renders a batch into one flat directory, so an item whose file
// name (case-insensitive) is already in the current batch starts the next one.
// Batch ids start at 1; every batch gets a fresh random token.
func MakeBatches(pending []reconcile.Action, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}

	var (
		batches []Batch
		current Batch
		names   map[string]struct{}
	)

	flush := func() {
		if len(current.Items) > 0 {
			batches = append(batches, current)
		}
		current = Batch{ID: len(batches) + 1, Token: uuid.NewString()}
		names = make(map[string]struct{}, size)
	}
	flush()

	for _, action := range pending {
		name := strings.ToLower(action.Key.Filename)
		if _, clash := names[name]; clash || len(current.Items) == size {
			flush()
		}
		current.Items = append(current.Items, Item{
			Key:      action.Key,
			SourceID: action.SourceID,
			Action:   action.Type,
		})
		names[name] = struct{}{}
	}
	flush()

	return batches, nil
}
