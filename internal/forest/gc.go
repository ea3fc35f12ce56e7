package forest

import (
	"strconv"

	"hashlife/internal/kiv"
	"hashlife/internal/metrics"
)

// GCFull runs the three-phase mark-sweep collection described in spec
// §4.2: clear flags at depths >= minDepth, mark every reachable entry
// from every registered root, then sweep unmarked entries. Layers below
// minDepth are treated as immortal for this pass and skipped entirely.
func (f *Forest) GCFull(minDepth Depth) {
	metrics.GCPassesTotal.WithLabelValues("full").Inc()
	before := make(map[Depth]int)
	if minDepth <= 0 {
		before[0] = f.leaves.Size()
	}
	for d := Depth(1); d <= f.MaxDepth(); d++ {
		if d >= minDepth {
			before[d] = f.NonLeaves(d).Size()
		}
	}

	// Phase 1: clear mark flags and drop cache-validity bits that
	// depend on survival of lower layers (spec §3 cache-consistency
	// invariant: a GC sweep of the referent invalidates the cache).
	if minDepth <= 0 {
		f.leaves.GCTraverse(false)
		f.leaves.Range(func(_ kiv.Index, v *LeafValue) {
			v.PopValid = false
		})
	}
	for d := Depth(1); d <= f.MaxDepth(); d++ {
		if d < minDepth {
			continue
		}
		t := f.NonLeaves(d)
		t.GCTraverse(false)
		t.Range(func(_ kiv.Index, v *NonLeafValue) {
			v.flags = v.flags.withResInvalid().withPopInvalid()
		})
	}

	// Phase 2: mark every node reachable from a registered root.
	for _, n := range f.roots {
		f.mark(n, minDepth)
	}

	// Phase 3: sweep.
	if minDepth <= 0 {
		f.leaves.GCTraverse(true)
		metrics.GCReclaimedEntries.WithLabelValues("0").Add(float64(before[0] - f.leaves.Size()))
	}
	for d := Depth(1); d <= f.MaxDepth(); d++ {
		if d < minDepth {
			continue
		}
		f.NonLeaves(d).GCTraverse(true)
		metrics.GCReclaimedEntries.WithLabelValues(strconv.Itoa(int(d))).Add(float64(before[d] - f.NonLeaves(d).Size()))
	}
}

// mark marks n and recurses into its children. Dual-layer nodes mark
// both sub-indices at the same depth. Depths below minDepth are treated
// as immortal and not visited (their entries need no marking since they
// are skipped by the sweep too).
func (f *Forest) mark(n Node, minDepth Depth) {
	if n.Depth < minDepth {
		return
	}
	if n.Depth == 0 {
		if n.Index != kiv.Empty {
			f.leaves.Mark(n.Index)
		}
		if n.Index2 != kiv.Empty {
			f.leaves.Mark(n.Index2)
		}
		return
	}
	t := f.NonLeaves(n.Depth)
	markOne := func(idx kiv.Index) {
		if idx == kiv.Empty || t.IsMarked(idx) {
			return
		}
		t.Mark(idx)
		q, ok := t.Key(idx)
		if !ok {
			return
		}
		for _, c := range q {
			f.mark(Node{Index: c, Depth: n.Depth - 1}, minDepth)
		}
	}
	markOne(n.Index)
	markOne(n.Index2)
}

// overfullFraction is the capacity threshold from spec §5:
// (MAX_I/8)*7, i.e. 7/8 of the index space.
func overfullFraction(capacity int) int {
	return (capacity / 8) * 7
}

// GCPartial runs a full GC rooted at the lowest layer whose size
// exceeds 7/8 of its capacity, reporting whether a collection ran
// (spec §4.2).
func (f *Forest) GCPartial() bool {
	lowest := Depth(-1)
	if f.leaves.Size() > overfullFraction(int(kiv.MaxIndex)) {
		lowest = 0
	}
	for d := Depth(1); d <= f.MaxDepth(); d++ {
		if f.NonLeaves(d).Size() > overfullFraction(int(kiv.MaxIndex)) {
			if lowest < 0 || d < lowest {
				lowest = d
			}
			break
		}
	}
	if lowest < 0 {
		return false
	}
	metrics.GCPassesTotal.WithLabelValues("partial").Inc()
	f.GCFull(lowest)
	return true
}
