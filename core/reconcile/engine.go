package reconcile

import (
	"sort"
)

// MatchResult holds the classification of every natural key seen in either catalog.
type MatchResult struct {
	matches map[NaturalKey]Match
	order   []NaturalKey
}

// get returns the match for a key.
func (r *MatchResult) get(key NaturalKey) (Match, bool) {
	m, ok := r.matches[key.fold()]
	return m, ok
}

// keys returns all keys: source order first, then destination-only keys sorted.
func (r *MatchResult) keys() []NaturalKey {
	keys := make([]NaturalKey, len(r.order))
	copy(keys, r.order)
	return keys
}

// Matches returns all matches in key order.
func (r *MatchResult) Matches() []Match {
	out := make([]Match, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.matches[key.fold()])
	}
	return out
}

// ByClass returns the matches with the given classification in key order.
func (r *MatchResult) ByClass(class Classification) []Match {
	var out []Match
	for _, key := range r.order {
		if m := r.matches[key.fold()]; m.Class == class {
			out = append(out, m)
		}
	}
	return out
}

// count returns the number of keys with the given classification.
func (r *MatchResult) count(class Classification) int {
	n := 0
	for _, m := range r.matches {
		if m.Class == class {
			n++
		}
	}
	return n
}

// Len returns the number of distinct keys.
func (r *MatchResult) Len() int {
	return len(r.order)
}

// Reconcile joins source and destination records on their natural key.
// It indexes the destination by key and classifies each source record. Two source records
// with the same key abort with a DuplicateKeyError. The inputs are not modified.
func Reconcile(source []AssetRecord, dest []DestinationRecord) (*MatchResult, error) {
	if err := checkDuplicates(source); err != nil {
		return nil, err
	}

	destIndex := indexDestinations(dest)

	result := &MatchResult{
		matches: make(map[NaturalKey]Match, len(source)+len(destIndex)),
		order:   make([]NaturalKey, 0, len(source)+len(destIndex)),
	}

	for i := range source {
		src := source[i]
		folded := src.Key.fold()
		match := Match{Key: src.Key, Source: &src}

		if dst, ok := destIndex[folded]; ok {
			d := dst
			match.Destination = &d
			if isStale(src, dst) {
				match.Class = ClassMatchedStale
			} else {
				match.Class = ClassMatchedUnchanged
			}
		} else {
			match.Class = ClassSourceOnly
		}

		result.matches[folded] = match
		result.order = append(result.order, src.Key)
	}

	// Destination-only keys follow in sorted order
	var destOnly []NaturalKey
	for folded, dst := range destIndex {
		if _, ok := result.matches[folded]; ok {
			continue
		}
		d := dst
		result.matches[folded] = Match{Key: dst.Key, Class: ClassDestOnly, Destination: &d}
		destOnly = append(destOnly, dst.Key)
	}
	sort.Slice(destOnly, func(i, j int) bool {
		return destOnly[i].String() < destOnly[j].String()
	})
	result.order = append(result.order, destOnly...)

	return result, nil
}

// isStale holds only when both timestamps are present and the edit is newer than the import.
func isStale(src AssetRecord, dst DestinationRecord) bool {
	if src.LastModifiedAt.IsZero() || dst.AddedAt.IsZero() {
		return false
	}
	return src.LastModifiedAt.After(dst.AddedAt)
}

// checkDuplicates returns a DuplicateKeyError for the first key, in source order, held by more than one record.
func checkDuplicates(source []AssetRecord) error {
	ids := make(map[NaturalKey][]string, len(source))
	for _, src := range source {
		folded := src.Key.fold()
		ids[folded] = append(ids[folded], src.SourceID)
	}
	for _, src := range source {
		if dup := ids[src.Key.fold()]; len(dup) > 1 {
			return &DuplicateKeyError{Key: src.Key, SourceIDs: dup}
		}
	}
	return nil
}

// indexDestinations builds the lookup index over LatestByKey.
func indexDestinations(dest []DestinationRecord) map[NaturalKey]DestinationRecord {
	index := make(map[NaturalKey]DestinationRecord, len(dest))
	for _, dst := range LatestByKey(dest) {
		index[dst.Key.fold()] = dst
	}
	return index
}

// LatestByKey collapses destination records sharing a key. A re-imported update lands
// next to the older copy, so the most recently added record wins; ties break on the lower
// destination id. The first-seen order of keys is kept.
func LatestByKey(dest []DestinationRecord) []DestinationRecord {
	pos := make(map[NaturalKey]int, len(dest))
	out := make([]DestinationRecord, 0, len(dest))
	for _, dst := range dest {
		folded := dst.Key.fold()
		i, ok := pos[folded]
		if !ok {
			pos[folded] = len(out)
			out = append(out, dst)
			continue
		}
		if supersedes(dst, out[i]) {
			out[i] = dst
		}
	}
	return out
}

func supersedes(candidate, current DestinationRecord) bool {
	if candidate.AddedAt.Equal(current.AddedAt) {
		return candidate.DestinationID < current.DestinationID
	}
	return candidate.AddedAt.After(current.AddedAt)
}
