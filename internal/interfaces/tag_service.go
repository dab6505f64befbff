package interfaces

import (
	"context"
)

// TagResolver maps user-supplied tag names to stable backend tag IDs,
// creating missing tags as needed. Resolution is sequential by contract:
// the backend performs no uniqueness transaction, so parallel creation
// of the same new name would race.
type TagResolver interface {
	// Resolve returns the IDs for the given names, in order. A name that
	// fails lookup and creation is logged, skipped, and reported in the
	// second return value; the batch never aborts. The ID list contains
	// no duplicates and may be shorter than the input.
	Resolve(ctx context.Context, names []string) (ids []string, skipped []string, err error)
}
