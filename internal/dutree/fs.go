package dutree

import (
	"os"
)

// EntryInfo describes a single directory entry with lstat semantics:
// symbolic links are reported as themselves, never followed.
type EntryInfo struct {
	// IsRegular indicates a regular file.
	IsRegular bool
	// IsDir indicates a directory.
	IsDir bool
	// Size is the apparent byte length (stat.size).
	Size int64
	// Blocks is the number of allocated 512-byte blocks.
	Blocks int64
}

// FS is the filesystem capability consumed by the Scanner. It is an
// interface so tests can substitute a synthetic filesystem.
type FS interface {
	// ListEntries returns the names of the entries in the directory.
	ListEntries(path string) ([]string, error)
	// StatEntry returns metadata for the entry without following
	// symbolic links.
	StatEntry(path string) (EntryInfo, error)
}

// OSFS reads the operating system's filesystem.
type OSFS struct{}

// ListEntries returns the entry names in the directory at path.
func (OSFS) ListEntries(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}

// StatEntry lstats the entry at path.
func (OSFS) StatEntry(path string) (EntryInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return EntryInfo{}, err
	}

	return EntryInfo{
		IsRegular: info.Mode().IsRegular(),
		IsDir:     info.IsDir(),
		Size:      info.Size(),
		Blocks:    allocatedBlocks(info),
	}, nil
}

// fallbackBlocks estimates allocation by rounding up to 4096-byte
// clusters when the platform does not report block counts.
func fallbackBlocks(size int64) int64 {
	if size == 0 {
		return 0
	}

	return (size + 4095) / 4096 * 4096 / BlockSize
}
