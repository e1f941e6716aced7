//go:build !windows

package dutree

import (
	"io/fs"
	"syscall"
)

// allocatedBlocks returns the number of 512-byte blocks allocated for
// the entry.
func allocatedBlocks(info fs.FileInfo) int64 {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return sys.Blocks
	}

	return fallbackBlocks(info.Size())
}
