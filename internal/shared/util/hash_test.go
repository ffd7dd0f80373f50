package util

import "testing"

func TestContentDigest(t *testing.T) {
	data := []byte("transcript bytes")
	got := ContentDigest(data)
	if got != ContentDigest(data) {
		t.Fatalf("expected stable digest, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("digest contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if got == ContentDigest([]byte("other bytes")) {
		t.Fatal("distinct payloads produced the same digest")
	}
}
