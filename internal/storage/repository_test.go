package storage_test

import (
	"path/filepath"
	"testing"

	"fintrack/internal/storage"
	"fintrack/internal/storage/storagetest"
)

func TestSQLiteRepositoryContract(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()

	storagetest.Run(t, repo)
}

func TestSQLiteRepositoryReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	for i := 0; i < 2; i++ {
		repo, err := storage.NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := repo.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}
