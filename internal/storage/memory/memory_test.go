package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, New())
}

func TestNewFromFileSeedsAndDedupes(t *testing.T) {
	dir := t.TempDir()

	s := NewFromFile(filepath.Join(dir, "missing.txt"))
	if len(s.users) != 0 {
		t.Fatalf("expected no users when file is missing")
	}

	path := filepath.Join(dir, "users.txt")
	if err := os.WriteFile(path, []byte("# header\nalice\nbob\nalice\n\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFile(path)
	if len(s.users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(s.users))
	}
	if _, err := s.FindUser(context.Background(), "bob"); err != nil {
		t.Fatalf("expected seeded bob: %v", err)
	}
}
