package dutree_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ossobv/dutree/internal/dutree"
)

func TestSummarize(t *testing.T) {
	root := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "a"), make([]byte, 1000), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b"), make([]byte, 2000), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := dutree.Summarize(root)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.AppSize != 3000 {
		t.Errorf("AppSize = %d, want 3000", summary.AppSize)
	}
	if summary.Entries != 2 {
		t.Errorf("Entries = %d, want 2", summary.Entries)
	}
	if summary.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", summary.Skipped)
	}
}

func TestSummarizeMissingRoot(t *testing.T) {
	if _, err := dutree.Summarize(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestSummarizeNotADirectory(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file")

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := dutree.Summarize(path); !errors.Is(err, dutree.ErrNotDirectory) {
		t.Fatalf("err = %v, want ErrNotDirectory", err)
	}
}
