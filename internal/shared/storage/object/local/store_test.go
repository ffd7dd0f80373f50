package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"cpl-backend/internal/shared/storage/object"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	payload := []byte("%PDF-1.4 fake transcript bytes")
	key := object.Key("doc-123", "transcript.pdf")
	meta := object.Metadata{"nuid": "N12345678", "student-name": "Jane Doe"}

	size, err := store.Put(ctx, key, "application/pdf", meta, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", size, len(payload))
	}

	rc, gotMeta, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("round-trip mismatch: got %q", data)
	}
	if gotMeta["nuid"] != "N12345678" {
		t.Fatalf("metadata nuid = %q", gotMeta["nuid"])
	}
}

func TestGetMissingKey(t *testing.T) {
	store := New(t.TempDir())

	_, _, err := store.Get(context.Background(), object.Key("nope", "missing.pdf"))
	if err != object.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRejectsTraversalKey(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Put(context.Background(), "../escape.txt", "text/plain", nil, strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for traversal key")
	}
}
