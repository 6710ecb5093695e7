package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// DuplicateKeyError reports two or more source records sharing one natural key.
type DuplicateKeyError struct {
	Key       NaturalKey
	SourceIDs []string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate natural key %q in source catalog (ids: %s)", e.Key.String(), strings.Join(e.SourceIDs, ", "))
}

// IsDuplicateKey reports whether err carries a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
