package dutree

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// BlockSize is the unit in which allocated blocks are counted.
const BlockSize = 512

var (
	// ErrNotDirectory reports a scan root that is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrScannerUsed reports a second Scan on a single-use Scanner.
	ErrScannerUsed = errors.New("scanner already used")
)

// Warning records a path that could not be read during a scan. The scan
// continues past it; the resulting tree is a best-effort approximation.
type Warning struct {
	Path string
	Err  error
}

// accumulator carries the scan-wide running subtotals under both
// metrics. The significance threshold at any moment is 5% of everything
// counted so far under the selected metric, so it grows monotonically
// as the scan proceeds.
//
// The counters are atomic only so a progress reporter may read them
// while the single-threaded walk runs.
type accumulator struct {
	app     atomic.Int64
	use     atomic.Int64
	entries atomic.Int64
	metric  Metric
}

func (a *accumulator) add(app, use int64) {
	a.app.Add(app)
	a.use.Add(use)
	a.entries.Add(1)
}

func (a *accumulator) threshold() int64 {
	if a.metric == Apparent {
		return a.app.Load() / 20
	}

	return a.use.Load() / 20
}

func (a *accumulator) selected(app, use int64) int64 {
	if a.metric == Apparent {
		return app
	}

	return use
}

// Scanner walks a directory tree depth-first and builds the usage tree.
// A Scanner is single-use: it holds the running subtotals of exactly
// one scan.
type Scanner struct {
	path string
	fsys FS
	log  *zap.Logger

	acc      accumulator
	used     bool
	warnings []Warning
}

// NewScanner validates that path denotes a directory on fsys and
// returns a Scanner for it. Trailing separators are stripped. A nil
// logger disables warning output; warnings are still recorded.
func NewScanner(path string, fsys FS, log *zap.Logger) (*Scanner, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		path = trimmed
	} else {
		path = "/"
	}

	info, err := fsys.StatEntry(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", path, err)
	}

	if !info.IsDir {
		return nil, fmt.Errorf("scanning %q: %w", path, ErrNotDirectory)
	}

	return &Scanner{path: path, fsys: fsys, log: log}, nil
}

// Path returns the normalized root path.
func (s *Scanner) Path() string { return s.path }

// Progress returns the number of entries and apparent bytes counted so
// far. It is safe to call while Scan runs.
func (s *Scanner) Progress() (entries, bytes int64) {
	return s.acc.entries.Load(), s.acc.app.Load()
}

// Warnings returns the unreadable paths skipped during the scan.
func (s *Scanner) Warnings() []Warning { return s.warnings }

// FinalThreshold returns the significance threshold as of the last
// counted entry. After Scan returns this is the stable value the final
// prune and merge passes used.
func (s *Scanner) FinalThreshold() int64 { return s.acc.threshold() }

// Scan walks the tree once and returns the root node, pruned and
// merged against the final threshold. useApparentSize selects which
// metric drives all significance decisions; both metrics are tracked
// and returned regardless.
func (s *Scanner) Scan(useApparentSize bool) (*Node, error) {
	if s.used {
		return nil, ErrScannerUsed
	}

	s.used = true

	if useApparentSize {
		s.acc.metric = Apparent
	} else {
		s.acc.metric = Used
	}

	root := NewDirectory(s.path)

	kept, leftApp, leftUse := s.scanDir(root, s.path)
	if !kept {
		root.Collapse(leftApp, leftUse)
	} else if len(root.Children()) == 0 {
		// Empty root directory.
		root.Collapse(0, 0)
	}

	// The threshold has grown during the scan, so decisions made early
	// were measured against a bar that was too low. Re-prune with the
	// now-stable value, then merge the leftover fragments pruning
	// cannot reach.
	threshold := s.acc.threshold()
	root.PruneIfSmallerThan(threshold, s.acc.metric)
	root.MergeUpwardsIfSmallerThan(threshold, s.acc.metric)

	return root, nil
}

// scanDir scans one directory into node. It reports whether node was
// kept as a distinct entry; if not, it returns the leftover totals the
// caller must fold into its own mixed accumulator.
func (s *Scanner) scanDir(node *Node, path string) (kept bool, leftoverApp, leftoverUse int64) {
	var (
		children           []*Node
		mixedApp, mixedUse int64
	)

	names, err := s.fsys.ListEntries(path)
	if err != nil {
		s.warn(path, err)
	}

	for _, name := range names {
		entryPath := joinEntry(path, name)

		info, err := s.fsys.StatEntry(entryPath)
		if err != nil {
			// Listed but gone by the time we stat it. Count what we
			// can observe once, skip what we cannot.
			s.warn(entryPath, err)

			continue
		}

		app, use := info.Size, info.Blocks*BlockSize

		switch {
		case info.IsRegular:
			if info.Blocks == 0 {
				// Pseudo-files on virtual filesystems may report a
				// size without allocating anything; count them as
				// empty under both metrics.
				app, use = 0, 0
			}

			if s.acc.selected(app, use) >= s.acc.threshold() {
				children = append(children, NewFile(entryPath, app, use))
			} else {
				mixedApp += app
				mixedUse += use
			}

			s.acc.add(app, use)

		case info.IsDir:
			child := NewDirectory(entryPath)

			childKept, leftApp, leftUse := s.scanDir(child, entryPath)
			if childKept {
				children = append(children, child)
			} else {
				mixedApp += leftApp
				mixedUse += leftUse
			}

			// A directory's own entry counts as content of its parent,
			// matching `du -sb` totals: a directory reports its
			// contents, excluding itself.
			mixedApp += app
			mixedUse += use
			s.acc.add(app, use)

		default:
			// Symlinks and special files are never significant on
			// their own.
			mixedApp += app
			mixedUse += use
			s.acc.add(app, use)
		}
	}

	if len(children) > 0 || s.acc.selected(mixedApp, mixedUse) >= s.acc.threshold() {
		node.AddChildren(children...)

		if mixedApp != 0 || mixedUse != 0 {
			node.AddChildren(NewLeftovers(path, mixedApp, mixedUse))
		}

		return true, 0, 0
	}

	return false, mixedApp, mixedUse
}

func (s *Scanner) warn(path string, err error) {
	s.warnings = append(s.warnings, Warning{Path: path, Err: err})
	s.log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
}

func joinEntry(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}

	return dir + "/" + name
}
