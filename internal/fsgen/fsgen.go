// Package fsgen generates deterministic pseudo-random in-memory
// filesystems, so scanner behavior can be exercised on a consistent,
// reasonably large tree without touching disk.
package fsgen

import (
	"fmt"
	"io/fs"
	"math/rand"

	"github.com/ossobv/dutree/internal/dutree"
)

// dirSize is the apparent size reported for every generated directory.
const dirSize = 4096

type node struct {
	name  string
	size  int64
	isDir bool
	dirs  []*node
	files []*node
}

func (n *node) blocks() int64 {
	return (n.size + 511) >> 9
}

// FS is a generated filesystem implementing dutree.FS. The same seed
// and depth always produce the same tree.
type FS struct {
	root  *node
	index map[string]*node
}

// New generates a filesystem from seed, with directories nested at most
// maxDepth levels deep.
func New(seed int64, maxDepth int) *FS {
	rng := rand.New(rand.NewSource(seed))

	root := &node{name: "", size: dirSize, isDir: true}
	generate(rng, root, maxDepth)

	fsys := &FS{root: root, index: make(map[string]*node)}
	fsys.addToIndex("/", root)

	return fsys
}

func generate(rng *rand.Rand, dir *node, depth int) {
	if depth > 0 {
		for _, name := range uniqueNames(rng.Intn(21), ".d") {
			sub := &node{name: name, size: dirSize, isDir: true}
			generate(rng, sub, depth-1)
			dir.dirs = append(dir.dirs, sub)
		}
	}

	for _, name := range uniqueNames(fileCount(rng), ".txt") {
		dir.files = append(dir.files, &node{name: name, size: fileSize(rng)})
	}
}

// fileCount mostly returns small counts, with a rare exponential tail.
func fileCount(rng *rand.Rand) int {
	n := rng.Intn(81)
	if n < 70 {
		return n
	}

	return rng.Intn(1<<(n-70) + 1)
}

// fileSize mostly returns small files, with the occasional large one.
func fileSize(rng *rand.Rand) int64 {
	if rng.Intn(81) != 0 {
		return 1 + rng.Int63n(1<<16)
	}

	return 1 + rng.Int63n(1<<31)
}

func uniqueNames(n int, suffix string) []string {
	width := len(fmt.Sprint(n))

	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%0*d%s", width, i, suffix)
	}

	return names
}

func (f *FS) addToIndex(path string, n *node) {
	f.index[path] = n

	for _, sub := range n.dirs {
		f.addToIndex(childPath(path, sub.name), sub)
	}

	for _, file := range n.files {
		f.index[childPath(path, file.name)] = file
	}
}

func childPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}

	return dir + "/" + name
}

// ListEntries returns directory names followed by file names.
func (f *FS) ListEntries(path string) ([]string, error) {
	n, ok := f.index[path]
	if !ok || !n.isDir {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	names := make([]string, 0, len(n.dirs)+len(n.files))
	for _, sub := range n.dirs {
		names = append(names, sub.name)
	}

	for _, file := range n.files {
		names = append(names, file.name)
	}

	return names, nil
}

// StatEntry returns metadata for the entry at path.
func (f *FS) StatEntry(path string) (dutree.EntryInfo, error) {
	n, ok := f.index[path]
	if !ok {
		return dutree.EntryInfo{}, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}

	return dutree.EntryInfo{
		IsRegular: !n.isDir,
		IsDir:     n.isDir,
		Size:      n.size,
		Blocks:    n.blocks(),
	}, nil
}

// Hide makes the entry at path fail on stat while its parent still
// lists it, simulating a deletion between listing and statting. Hidden
// entries still count towards ContentSize.
func (f *FS) Hide(path string) {
	delete(f.index, path)
}

// ContentSize returns the total apparent and used sizes of the contents
// under path, excluding the entry itself. Subdirectory entries count
// towards their parent, matching the scanner's accounting.
func (f *FS) ContentSize(path string) (app, use int64, err error) {
	n, ok := f.index[path]
	if !ok {
		return 0, 0, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}

	app, use = subtreeSize(n)

	return app - n.size, use - n.blocks()*dutree.BlockSize, nil
}

func subtreeSize(n *node) (app, use int64) {
	app = n.size
	use = n.blocks() * dutree.BlockSize

	for _, file := range n.files {
		app += file.size
		use += file.blocks() * dutree.BlockSize
	}

	for _, sub := range n.dirs {
		subApp, subUse := subtreeSize(sub)
		app += subApp
		use += subUse
	}

	return app, use
}
