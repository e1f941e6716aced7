package dutree

import (
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Summary holds the grand totals of a directory tree under both
// metrics, without the per-path breakdown a full scan produces.
type Summary struct {
	// AppSize is the total apparent size in bytes.
	AppSize int64 `json:"apparent_size"`
	// UseSize is the total allocated size in bytes.
	UseSize int64 `json:"used_size"`
	// Entries is the number of filesystem entries counted.
	Entries int64 `json:"entries"`
	// Skipped is the number of unreadable paths.
	Skipped int64 `json:"skipped"`
}

// Summarize computes only the grand totals under root, using a parallel
// walk. It applies the same accounting rules as a full scan: lstat
// semantics, directory entries counted as content of their parent (the
// root's own entry excluded), zero-allocated-block regular files
// counted as empty.
func Summarize(root string) (Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", root, err)
	}

	if !info.IsDir() {
		return Summary{}, fmt.Errorf("summarizing %q: %w", root, ErrNotDirectory)
	}

	var app, use, entries, skipped atomic.Int64

	conf := &fastwalk.Config{
		Follow: false,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			skipped.Add(1)

			return nil
		}

		if path == root {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			skipped.Add(1)

			return nil
		}

		entries.Add(1)

		blocks := allocatedBlocks(info)
		if info.Mode().IsRegular() && blocks == 0 {
			return nil
		}

		app.Add(info.Size())
		use.Add(blocks * BlockSize)

		return nil
	})
	if walkErr != nil {
		return Summary{}, fmt.Errorf("summarizing %q: %w", root, walkErr)
	}

	return Summary{
		AppSize: app.Load(),
		UseSize: use.Load(),
		Entries: entries.Load(),
		Skipped: skipped.Load(),
	}, nil
}
