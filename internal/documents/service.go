// Package documents serves original uploaded files back out of object
// storage by their {document_id}/{filename} composite key.
package documents

import (
	"context"
	"fmt"
	"io"

	"cpl-backend/internal/shared/storage/object"
)

// Service contains retrieval logic for stored documents.
type Service struct {
	Store object.ObjectStore
}

func NewService(store object.ObjectStore) *Service {
	return &Service{Store: store}
}

// Fetch returns the stored bytes and metadata for a document. Returns
// object.ErrNotFound when the key is absent.
func (s *Service) Fetch(ctx context.Context, documentID, fileName string) ([]byte, object.Metadata, error) {
	key := object.Key(documentID, fileName)
	rc, meta, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, meta, nil
}
