package dutree

import (
	"fmt"
	"sort"
	"strings"
)

// Metric selects which of the two tracked sizes drives threshold decisions.
type Metric int

const (
	// Apparent is the logical byte length reported by stat.
	Apparent Metric = iota
	// Used is the allocated storage derived from block counts.
	Used
)

// String returns the metric name as used in reports and flags.
func (m Metric) String() string {
	if m == Apparent {
		return "apparent"
	}

	return "used"
}

// Kind classifies a node.
type Kind int

const (
	// File is a single regular file.
	File Kind = iota
	// Directory is a real directory entry.
	Directory
	// Mixed is a synthetic leftover bucket that absorbs the combined
	// size of a directory's individually insignificant entries.
	Mixed
)

// leftoverSuffix is appended to a leftover node's path. The 0xff byte
// is greater than any byte that can occur in a filename, so leftovers
// sort after all real siblings.
const leftoverSuffix = "/\xff*"

// Node is one reportable unit of disk usage: a file, a directory, or a
// leftover bucket.
//
// A node is either sized (leaf-like: its apparent and used sizes are
// authoritative and it has no children) or internal (its sizes are the
// sum of its children). Mixed nodes are always sized.
type Node struct {
	path string
	kind Kind

	sized bool
	app   int64
	use   int64

	children []*Node
}

// NewFile returns a sized node for a single regular file.
func NewFile(path string, appSize, useSize int64) *Node {
	return &Node{path: path, kind: File, sized: true, app: appSize, use: useSize}
}

// NewDirectory returns an empty internal node for a directory.
func NewDirectory(path string) *Node {
	return &Node{path: path, kind: Directory}
}

// NewLeftovers returns a sized Mixed node holding the combined size of
// a directory's insignificant entries.
func NewLeftovers(parentPath string, appSize, useSize int64) *Node {
	parentPath = strings.TrimSuffix(parentPath, "/")

	return &Node{path: parentPath + leftoverSuffix, kind: Mixed, sized: true, app: appSize, use: useSize}
}

// Path returns the filesystem path this node denotes. Leftover nodes
// carry a synthetic sort marker; use Name for display.
func (n *Node) Path() string { return n.path }

// Kind returns the node classification.
func (n *Node) Kind() Kind { return n.kind }

// IsLeaf reports whether the node's sizes are fixed (no children).
func (n *Node) IsLeaf() bool { return n.sized }

// Children returns a copy of the node's child list. Sized nodes have
// none.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)

	return out
}

// Name returns the display name: directories end with a separator,
// leftover buckets with an asterisk.
func (n *Node) Name() string {
	switch n.kind {
	case Mixed:
		base, _, _ := strings.Cut(n.path, "\xff")

		return base + "*"
	case Directory:
		if strings.HasSuffix(n.path, "/") {
			return n.path
		}

		return n.path + "/"
	default:
		return n.path
	}
}

// AppSize returns the total apparent size including descendants.
func (n *Node) AppSize() int64 {
	if n.sized {
		return n.app
	}

	var total int64
	for _, child := range n.children {
		total += child.AppSize()
	}

	return total
}

// UseSize returns the total allocated size including descendants.
func (n *Node) UseSize() int64 {
	if n.sized {
		return n.use
	}

	var total int64
	for _, child := range n.children {
		total += child.UseSize()
	}

	return total
}

// Size returns the node total under the given metric.
func (n *Node) Size(metric Metric) int64 {
	if metric == Apparent {
		return n.AppSize()
	}

	return n.UseSize()
}

// AddChildren appends nodes to an internal node. Adding to a sized node
// is a programming error.
func (n *Node) AddChildren(nodes ...*Node) {
	if n.sized {
		panic(fmt.Sprintf("dutree: adding children to sized node %q", n.path))
	}

	n.children = append(n.children, nodes...)
}

// Collapse converts an internal node into a sized node with the given
// fixed totals, discarding its children. Collapsing a sized node is a
// programming error.
func (n *Node) Collapse(appSize, useSize int64) {
	if n.sized {
		panic(fmt.Sprintf("dutree: collapsing sized node %q", n.path))
	}

	n.sized = true
	n.app = appSize
	n.use = useSize
	n.children = nil
}

// PruneIfSmallerThan recursively collapses subtrees whose total under
// the given metric is below threshold, merging the pruned sizes into a
// trailing Mixed sibling. A directory left with nothing but its own
// leftover bucket is collapsed into a single directory leaf instead.
//
// The transformation reorganizes how size is attributed among nodes and
// never changes the tree totals; that invariant is asserted per node.
func (n *Node) PruneIfSmallerThan(threshold int64, metric Metric) {
	if n.sized {
		return
	}

	if n.Size(metric) < threshold {
		n.Collapse(n.AppSize(), n.UseSize())

		return
	}

	prevApp, prevUse := n.AppSize(), n.UseSize()

	for _, child := range n.children {
		child.PruneIfSmallerThan(threshold, metric)
	}

	var (
		kept                 []*Node
		prunedApp, prunedUse int64
	)

	for _, child := range n.children {
		if child.Size(metric) < threshold {
			prunedApp += child.AppSize()
			prunedUse += child.UseSize()
		} else {
			kept = append(kept, child)
		}
	}

	// A lone leftover bucket means nothing in this directory deserved
	// its own line; the directory itself becomes the line.
	if len(kept) == 1 && kept[0].kind == Mixed {
		prunedApp += kept[0].AppSize()
		prunedUse += kept[0].UseSize()
		kept = nil
	}

	switch {
	case prunedApp == 0 && prunedUse == 0:
		n.children = kept
	case len(kept) == 0:
		n.Collapse(prunedApp, prunedUse)
	case kept[len(kept)-1].kind == Mixed:
		kept[len(kept)-1].app += prunedApp
		kept[len(kept)-1].use += prunedUse
		n.children = kept
	default:
		n.children = append(kept, NewLeftovers(n.path, prunedApp, prunedUse))
	}

	n.assertConserved(prevApp, prevUse)
}

// MergeUpwardsIfSmallerThan moves leaves still below threshold into
// their grandparent's trailing Mixed bucket, when one exists. Pruning
// merges within a single level only; this one-shot pass cleans up the
// small leaves it structurally cannot reach. Run it once, after
// pruning, with the final threshold.
func (n *Node) MergeUpwardsIfSmallerThan(threshold int64, metric Metric) {
	prevApp, prevUse := n.AppSize(), n.UseSize()

	for _, small := range n.findSmall(threshold, metric, nil, nil) {
		if len(small.parents) < 2 {
			continue
		}

		grandparent := small.parents[len(small.parents)-2]
		tail := grandparent.children[len(grandparent.children)-1]

		if tail.kind != Mixed {
			continue
		}

		tail.app += small.node.AppSize()
		tail.use += small.node.UseSize()

		parent := small.parents[len(small.parents)-1]
		parent.removeChild(small.node)

		if len(parent.children) == 0 {
			panic(fmt.Sprintf("dutree: merge emptied node %q", parent.path))
		}
	}

	n.assertConserved(prevApp, prevUse)
}

// smallRef pairs a small leaf with its chain of ancestors, root first.
type smallRef struct {
	node    *Node
	parents []*Node
}

func (n *Node) findSmall(threshold int64, metric Metric, parents []*Node, out []smallRef) []smallRef {
	if n.sized {
		if n.Size(metric) < threshold {
			out = append(out, smallRef{node: n, parents: parents})
		}

		return out
	}

	chain := make([]*Node, len(parents)+1)
	copy(chain, parents)
	chain[len(parents)] = n

	for _, child := range n.children {
		out = child.findSmall(threshold, metric, chain, out)
	}

	return out
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)

			return
		}
	}

	panic(fmt.Sprintf("dutree: removing %q: not a child of %q", child.path, n.path))
}

// Leaves returns all sized nodes, sorted by path. The leftover sort
// marker places each Mixed node after its directory's real entries.
func (n *Node) Leaves() []*Node {
	leaves := n.appendLeaves(nil)

	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].path < leaves[j].path
	})

	return leaves
}

func (n *Node) appendLeaves(out []*Node) []*Node {
	if n.sized {
		return append(out, n)
	}

	for _, child := range n.children {
		out = child.appendLeaves(out)
	}

	return out
}

// String renders the node total and display name, mainly for debugging
// and test failure output.
func (n *Node) String() string {
	return fmt.Sprintf("%12d  %s", n.AppSize(), n.Name())
}

func (n *Node) assertConserved(prevApp, prevUse int64) {
	if app, use := n.AppSize(), n.UseSize(); app != prevApp || use != prevUse {
		panic(fmt.Sprintf("dutree: size drift on %q: apparent %d -> %d, used %d -> %d",
			n.path, prevApp, app, prevUse, use))
	}
}
