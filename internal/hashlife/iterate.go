// Package hashlife implements the memoized HashLife recursion (spec
// §4.4), its pyramid/boolean composition ops (§4.5), and population
// tracking (§3/§8), all operating on a shared *forest.Forest.
package hashlife

import (
	"fmt"

	"hashlife/internal/forest"
	"hashlife/internal/leafkernel"
	"hashlife/internal/metrics"
)

// Recurse computes the centered half-size node of n advanced by m*2^e
// generations (spec §4.4). n.Depth must be >= 1 and n must be a
// single-layer node (Index2 == kiv.Empty); the streaming engine handles
// dual-layer pairs itself. m must be in 0..8; m == 0 is the legal
// "project without advancing" no-op required by pyramid logic. When
// n.Depth < e+1 every level runs both stages and the advance is
// m*2^(n.Depth-1), the most a node of that depth can take.
func Recurse(f *forest.Forest, n forest.Node, m uint8, e uint64) forest.Node {
	if n.Depth < 1 {
		panic(fmt.Sprintf("hashlife: Recurse requires depth >= 1, got %d", n.Depth))
	}
	if !n.IsSingleLayer() {
		panic("hashlife: Recurse requires a single-layer node; use the streaming engine for pairs")
	}
	if m > 8 {
		panic(fmt.Sprintf("hashlife: Recurse requires m in [0,8], got %d", m))
	}

	if m == 0 {
		return project(f, n)
	}

	if n.Depth == 1 {
		return baseCase(f, n, m)
	}

	childDepth := n.Depth - 1
	if n.Index != 0 {
		v := f.NonLeafValuePtr(n.Depth, n.Index)
		if v.ResHit(m, e, childDepth) {
			metrics.RecurseCacheHits.Inc()
			return forest.Node{Index: v.Res, Depth: childDepth}
		}
	}
	metrics.RecurseCacheMisses.Inc()

	nine := NineChildren(f, n)

	var advanced [9]forest.Node
	if uint64(n.Depth) > e+1 {
		// One stage suffices: project the nine, deferring the real
		// advance to the regrouped quadrants below.
		for i, c := range nine {
			advanced[i] = project(f, c)
		}
	} else {
		for i, c := range nine {
			advanced[i] = Recurse(f, c, m, e)
		}
	}

	tl, tr, bl, br := Regroup(f, advanced)
	rtl := Recurse(f, tl, m, e)
	rtr := Recurse(f, tr, m, e)
	rbl := Recurse(f, bl, m, e)
	rbr := Recurse(f, br, m, e)

	resIdx := f.MakeNonLeaf(childDepth, forest.Quad{rtl.Index, rtr.Index, rbl.Index, rbr.Index})
	result := forest.Node{Index: resIdx, Depth: childDepth}

	if n.Index != 0 {
		v := f.NonLeafValuePtr(n.Depth, n.Index)
		v.RecordRes(resIdx, m, e)
	}
	return result
}

// Project returns the centered child of n one depth down, without
// advancing time (spec §4.4's m==0 case, and the "one-stage" inner
// step). It equals getchild(n, centered) per the testable property in
// spec §8. Exported so the streaming engine can project each sublayer
// of a dual-layer pair independently.
func Project(f *forest.Forest, n forest.Node) forest.Node {
	if n.Depth < 1 {
		panic("hashlife: project requires depth >= 1")
	}
	if n.IsEmpty() {
		return forest.Node{Depth: n.Depth - 1}
	}
	nine := NineChildren(f, n)
	return nine[4] // CC
}

// project is kept as the unexported name used within this package.
func project(f *forest.Forest, n forest.Node) forest.Node { return Project(f, n) }

// baseCase delegates to the leaf kernel: depth 1 is a 32x32 grid of
// four 16x16 leaves, advanced by m generations (m*2^0; depth 1 is always
// in the both-stages regime, and the factor 2 per level for larger e is
// supplied by Recurse's two-stage levels above). m fits within the
// kernel's eight-generation margin (spec §4.3/§4.4).
func baseCase(f *forest.Forest, n forest.Node, m uint8) forest.Node {
	total := uint64(m)
	if total == 0 || total > 8 {
		panic(fmt.Sprintf("hashlife: depth-1 advance of %d generations exceeds the leaf kernel's margin", total))
	}
	var q leafkernel.Quadrant
	q[0][0] = leafkernel.Leaf(f.LeafBitmap(f.GetChild(n, forest.TL).Index))
	q[0][1] = leafkernel.Leaf(f.LeafBitmap(f.GetChild(n, forest.TR).Index))
	q[1][0] = leafkernel.Leaf(f.LeafBitmap(f.GetChild(n, forest.BL).Index))
	q[1][1] = leafkernel.Leaf(f.LeafBitmap(f.GetChild(n, forest.BR).Index))

	out := leafkernel.Step(int(total), q)
	idx := f.MakeLeaf(forest.Bitmap(out))
	return forest.Node{Index: idx, Depth: 0}
}
