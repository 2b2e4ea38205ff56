package testutil

import (
	"archive/zip"
	"bytes"
	"testing"
)

// CreateTestZip builds an in-memory zip archive from a map of entry name
// to content. It's useful for testing plugin archive parsing.
func CreateTestZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for name, content := range entries {
		entry, err := zipWriter.Create(name)
		if err != nil {
			t.Fatalf("Failed to create entry '%s' in zip: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write entry '%s' in zip: %v", name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return buf.Bytes()
}
