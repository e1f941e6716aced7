package fsgen_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/ossobv/dutree/internal/dutree"
	"github.com/ossobv/dutree/internal/fsgen"
)

// newNonEmpty returns a generated filesystem whose root has at least
// one entry. Generation is deterministic, so the chosen seed is stable.
func newNonEmpty(t *testing.T) *fsgen.FS {
	t.Helper()

	for seed := int64(1); seed <= 20; seed++ {
		fsys := fsgen.New(seed, 2)

		names, err := fsys.ListEntries("/")
		if err != nil {
			t.Fatalf("ListEntries(/): %v", err)
		}

		if len(names) > 0 {
			return fsys
		}
	}

	t.Fatal("no seed in 1..20 produces a non-empty root")

	return nil
}

func TestDeterministic(t *testing.T) {
	a := fsgen.New(7, 2)
	b := fsgen.New(7, 2)

	appA, useA, err := a.ContentSize("/")
	if err != nil {
		t.Fatalf("ContentSize: %v", err)
	}

	appB, useB, err := b.ContentSize("/")
	if err != nil {
		t.Fatalf("ContentSize: %v", err)
	}

	if appA != appB || useA != useB {
		t.Errorf("same seed differs: %d/%d vs %d/%d", appA, useA, appB, useB)
	}
}

func TestContentSizeMatchesWalk(t *testing.T) {
	fsys := newNonEmpty(t)

	wantApp, wantUse, err := fsys.ContentSize("/")
	if err != nil {
		t.Fatalf("ContentSize: %v", err)
	}

	gotApp, gotUse := walkContent(t, fsys, "/")
	if gotApp != wantApp || gotUse != wantUse {
		t.Errorf("walked %d/%d, ContentSize %d/%d", gotApp, gotUse, wantApp, wantUse)
	}
}

// walkContent recomputes content sizes through the public listing and
// stat interface, excluding the entry at path itself.
func walkContent(t *testing.T, fsys *fsgen.FS, path string) (app, use int64) {
	t.Helper()

	names, err := fsys.ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries(%q): %v", path, err)
	}

	for _, name := range names {
		child := path + "/" + name
		if path == "/" {
			child = "/" + name
		}

		info, err := fsys.StatEntry(child)
		if err != nil {
			t.Fatalf("StatEntry(%q): %v", child, err)
		}

		app += info.Size
		use += info.Blocks * dutree.BlockSize

		if info.IsDir {
			subApp, subUse := walkContent(t, fsys, child)
			app += subApp
			use += subUse
		}
	}

	return app, use
}

func TestHideFailsStatButStaysListed(t *testing.T) {
	fsys := newNonEmpty(t)

	names, err := fsys.ListEntries("/")
	if err != nil {
		t.Fatalf("ListEntries(/): %v", err)
	}

	victim := "/" + names[0]
	fsys.Hide(victim)

	if _, err := fsys.StatEntry(victim); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("StatEntry(%q) err = %v, want ErrNotExist", victim, err)
	}

	again, err := fsys.ListEntries("/")
	if err != nil {
		t.Fatalf("ListEntries(/): %v", err)
	}

	if len(again) != len(names) {
		t.Errorf("hidden entry disappeared from listing: %d vs %d names", len(again), len(names))
	}
}

func TestMissingPath(t *testing.T) {
	fsys := fsgen.New(1, 1)

	if _, err := fsys.StatEntry("/no/such/entry"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("StatEntry err = %v, want ErrNotExist", err)
	}

	if _, err := fsys.ListEntries("/no/such/dir"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ListEntries err = %v, want ErrNotExist", err)
	}
}
