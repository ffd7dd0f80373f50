package requests

import "context"

// Repo persists Request Records in the metadata table.
type Repo interface {
	// Insert stores a new pending record and returns its generated request id.
	Insert(ctx context.Context, rec NewRecord) (string, error)
	// List returns all records ordered by submission time descending.
	List(ctx context.Context) ([]Record, error)
	// FindLatestByNUID returns the most recently submitted record for a
	// student id, or ErrNotFound.
	FindLatestByNUID(ctx context.Context, nuid string) (Record, error)
	// UpdateStatus mutates status/credits/notes/updated fields. Returns
	// ErrNotFound when the backend can detect that no row matched.
	UpdateStatus(ctx context.Context, upd StatusUpdate) error
	// Source names the backing store for response payloads.
	Source() string
}
