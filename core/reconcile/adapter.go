package reconcile

import "context"

// Loader supplies the two record sequences a plan is computed from.
// The catalog reader implements it against working copies of both catalogs.
type Loader interface {
	// Load returns the source and destination records.
	// Implementations release any resources they acquire before returning.
	Load(ctx context.Context) ([]AssetRecord, []DestinationRecord, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]AssetRecord, []DestinationRecord, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]AssetRecord, []DestinationRecord, error) {
	return f(ctx)
}
