package forest

import (
	"fmt"
	"strconv"

	"hashlife/internal/kiv"
	"hashlife/internal/metrics"
)

// Config controls forest-wide resource limits (spec §6: a single
// max_memory_bytes, no environment variables, no persisted state).
type Config struct {
	// MaxMemoryBytes is the resident-size threshold across every
	// layer, typically expressed as MiB * 2^20 by the caller. The
	// forest stores it but does not enforce it: engine.Tree compares
	// TotalBytes against it after each Advance and then requests a
	// threshold GC, which collects only when some layer holds more
	// than 7/8 of the index space. Zero disables that check.
	MaxMemoryBytes int64
}

// DefaultConfig mirrors the teacher's DefaultConfig helpers: sensible
// defaults with no surprises.
func DefaultConfig() Config {
	return Config{MaxMemoryBytes: 512 << 20}
}

// Forest is the hypertree: one leaf table at depth 0 plus a growing
// stack of non-leaf tables, created on demand and never destroyed until
// the forest itself is discarded (spec §3 "monotonic layer growth").
type Forest struct {
	cfg       Config
	leaves    *kiv.Table[Bitmap, LeafValue]
	nonleaves []*kiv.Table[Quad, NonLeafValue]

	roots    map[RootHandle]Node
	nextRoot RootHandle
}

// New constructs an empty forest.
func New(cfg Config) *Forest {
	return &Forest{
		cfg:    cfg,
		leaves: kiv.New[Bitmap, LeafValue](),
		roots:  make(map[RootHandle]Node),
	}
}

// Config returns the forest's resource configuration.
func (f *Forest) Config() Config { return f.cfg }

// Leaves exposes the depth-0 interning table.
func (f *Forest) Leaves() *kiv.Table[Bitmap, LeafValue] { return f.leaves }

// NonLeaves returns the interning table for depth d (d >= 1), creating
// any intervening layers that do not yet exist.
func (f *Forest) NonLeaves(d Depth) *kiv.Table[Quad, NonLeafValue] {
	if d < 1 {
		panic(fmt.Sprintf("forest: NonLeaves called with depth %d < 1", d))
	}
	for len(f.nonleaves) < int(d) {
		f.nonleaves = append(f.nonleaves, kiv.New[Quad, NonLeafValue]())
	}
	return f.nonleaves[d-1]
}

// MaxDepth returns the deepest non-leaf layer currently allocated (0 if
// only leaves exist).
func (f *Forest) MaxDepth() Depth { return Depth(len(f.nonleaves)) }

// MakeLeaf interns a 16x16 bitmap, returning its index. The all-zero
// bitmap always maps to kiv.Empty without being inserted.
func (f *Forest) MakeLeaf(bm Bitmap) NodeIndex {
	if bm.IsZero() {
		return kiv.Empty
	}
	return f.leaves.GetOrInsert(bm, true)
}

// MakeNonLeaf interns a 4-tuple of depth-(d-1) children as a depth-d
// node, auto-creating the layer if needed. A Quad of four kiv.Empty
// indices always maps to kiv.Empty.
func (f *Forest) MakeNonLeaf(d Depth, q Quad) NodeIndex {
	if q == (Quad{}) {
		return kiv.Empty
	}
	return f.NonLeaves(d).GetOrInsert(q, true)
}

// GetChild returns the n-th quadrant (TL, TR, BL, BR per the constants
// in types.go) of a node, with depth decremented. Children of the
// canonical empty node are the canonical empty node one depth down.
// Children of a leaf (depth 0) are not addressable at this granularity
// and resolve to Invalid.
func (f *Forest) GetChild(n Node, which int) Node {
	if n.Depth == 0 {
		return Invalid
	}
	if n.IsEmpty() {
		return Node{Depth: n.Depth - 1}
	}
	get := func(idx NodeIndex) NodeIndex {
		if idx == kiv.Empty {
			return kiv.Empty
		}
		q, ok := f.NonLeaves(n.Depth).Key(idx)
		if !ok {
			panic("forest: dangling non-leaf index (depth discipline violated)")
		}
		return q[which]
	}
	return Node{Index: get(n.Index), Index2: get(n.Index2), Depth: n.Depth - 1}
}

// LeafBitmap returns the interned bitmap for a depth-0 index.
func (f *Forest) LeafBitmap(i NodeIndex) Bitmap {
	if i == kiv.Empty {
		return Bitmap{}
	}
	bm, ok := f.leaves.Key(i)
	if !ok {
		panic("forest: dangling leaf index")
	}
	return bm
}

// NonLeafChildren returns the Quad key for a depth-d non-leaf index.
func (f *Forest) NonLeafChildren(d Depth, i NodeIndex) Quad {
	if i == kiv.Empty {
		return Quad{}
	}
	q, ok := f.NonLeaves(d).Key(i)
	if !ok {
		panic("forest: dangling non-leaf index")
	}
	return q
}

// LeafValuePtr resolves a depth-0 index to its mutable auxiliary value.
// The pointer is invalidated by any GC pass; see kiv.Table.Ind2Ptr.
func (f *Forest) LeafValuePtr(i NodeIndex) *LeafValue {
	if i == kiv.Empty {
		return nil
	}
	return f.leaves.Ind2Ptr(i)
}

// NonLeafValuePtr resolves a depth-d (d>=1) index to its mutable
// auxiliary value.
func (f *Forest) NonLeafValuePtr(d Depth, i NodeIndex) *NonLeafValue {
	if i == kiv.Empty {
		return nil
	}
	return f.NonLeaves(d).Ind2Ptr(i)
}

// NewHandle registers a root, protecting its reachable subgraph from GC
// until deregistered. Returns a non-zero opaque id (spec §6).
func (f *Forest) NewHandle(n Node) RootHandle {
	f.nextRoot++
	h := f.nextRoot
	f.roots[h] = n
	return h
}

// DeleteHandle deregisters a root, releasing its protection. Unknown
// handles are a no-op InvalidHandle condition surfaced to the caller.
func (f *Forest) DeleteHandle(h RootHandle) error {
	if _, ok := f.roots[h]; !ok {
		return fmt.Errorf("forest: invalid handle %d", h)
	}
	delete(f.roots, h)
	return nil
}

// Root resolves a handle to its registered node.
func (f *Forest) Root(h RootHandle) (Node, error) {
	n, ok := f.roots[h]
	if !ok {
		return Node{}, fmt.Errorf("forest: invalid handle %d", h)
	}
	return n, nil
}

// Roots returns every currently registered (handle, node) pair. Used by
// GC's mark phase and by diagnostics.
func (f *Forest) Roots() map[RootHandle]Node {
	return f.roots
}

// TotalBytes sums the estimated resident size of every layer.
func (f *Forest) TotalBytes() int64 {
	total := f.leaves.TotalBytes()
	for _, t := range f.nonleaves {
		total += t.TotalBytes()
	}
	return total
}

// ReportMetrics publishes the forest's current size to the package-wide
// Prometheus gauges. Cheap enough to call after every GC pass or on an
// operator-driven stats tick; not on the hot path of iterate_recurse.
func (f *Forest) ReportMetrics() {
	metrics.ForestBytes.Set(float64(f.TotalBytes()))
	metrics.ForestLayerEntries.WithLabelValues("0").Set(float64(f.leaves.Size()))
	for d := Depth(1); d <= f.MaxDepth(); d++ {
		metrics.ForestLayerEntries.WithLabelValues(strconv.Itoa(int(d))).Set(float64(f.NonLeaves(d).Size()))
	}
}
