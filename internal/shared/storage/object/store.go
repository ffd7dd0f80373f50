package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under the requested key.
var ErrNotFound = errors.New("object not found")

// Metadata carries the string headers stored alongside an object.
type Metadata map[string]string

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, meta Metadata, r io.Reader) (sizeBytes int64, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, Metadata, error)
}

// Key builds the canonical object key for an uploaded document. The
// {documentID}/{filename} layout must be preserved exactly: retrieval
// endpoints rebuild the same key from path parameters.
func Key(documentID, filename string) string {
	return documentID + "/" + filename
}
