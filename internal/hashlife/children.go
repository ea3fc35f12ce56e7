package hashlife

import (
	"hashlife/internal/forest"
)

// NineChildren computes the nine overlapping half-sized children of
// node (TL, TC, TR, CL, CC, CR, BL, BC, BR, in that order) at depth
// node.Depth-1. The four corners are node's direct children; the five
// overlap nodes are built by interning 4-tuples drawn from
// grandchildren. Exported so the lane-analysis package can reuse the
// same overlap construction for its own five-child scan.
func NineChildren(f *forest.Forest, node forest.Node) [9]forest.Node {
	if node.Depth == 1 {
		return nineChildrenBase(f, node)
	}

	nw := f.GetChild(node, forest.TL)
	ne := f.GetChild(node, forest.TR)
	sw := f.GetChild(node, forest.BL)
	se := f.GetChild(node, forest.BR)

	overlapDepth := node.Depth - 1
	mk := func(a, b, c, d forest.Node) forest.Node {
		idx := f.MakeNonLeaf(overlapDepth, forest.Quad{a.Index, b.Index, c.Index, d.Index})
		return forest.Node{Index: idx, Depth: overlapDepth}
	}
	g := func(n forest.Node, q int) forest.Node { return f.GetChild(n, q) }

	tc := mk(g(nw, forest.TR), g(ne, forest.TL), g(nw, forest.BR), g(ne, forest.BL))
	cl := mk(g(nw, forest.BL), g(nw, forest.BR), g(sw, forest.TL), g(sw, forest.TR))
	cc := mk(g(nw, forest.BR), g(ne, forest.BL), g(sw, forest.TR), g(se, forest.TL))
	cr := mk(g(ne, forest.BL), g(ne, forest.BR), g(se, forest.TL), g(se, forest.TR))
	bc := mk(g(sw, forest.TR), g(se, forest.TL), g(sw, forest.BR), g(se, forest.BL))

	return [9]forest.Node{nw, tc, ne, cl, cc, cr, sw, bc, se}
}

// nineChildrenBase is the depth-1 special case: a node's "children" are
// already leaves (depth 0), so its grandchildren are the four 8x8
// words that make up each leaf's bitmap. The overlap formula is
// identical to the general case; only the grandchild lookup and the
// interning step (MakeLeaf instead of MakeNonLeaf) differ.
func nineChildrenBase(f *forest.Forest, node forest.Node) [9]forest.Node {
	nw := f.GetChild(node, forest.TL)
	ne := f.GetChild(node, forest.TR)
	sw := f.GetChild(node, forest.BL)
	se := f.GetChild(node, forest.BR)

	wNW := f.LeafBitmap(nw.Index)
	wNE := f.LeafBitmap(ne.Index)
	wSW := f.LeafBitmap(sw.Index)
	wSE := f.LeafBitmap(se.Index)

	mk := func(a, b, c, d uint64) forest.Node {
		return forest.Node{Index: f.MakeLeaf(forest.Bitmap{a, b, c, d}), Depth: 0}
	}

	tc := mk(wNW[forest.TR], wNE[forest.TL], wNW[forest.BR], wNE[forest.BL])
	cl := mk(wNW[forest.BL], wNW[forest.BR], wSW[forest.TL], wSW[forest.TR])
	cc := mk(wNW[forest.BR], wNE[forest.BL], wSW[forest.TR], wSE[forest.TL])
	cr := mk(wNE[forest.BL], wNE[forest.BR], wSE[forest.TL], wSE[forest.TR])
	bc := mk(wSW[forest.TR], wSE[forest.TL], wSW[forest.BR], wSE[forest.BL])

	return [9]forest.Node{nw, tc, ne, cl, cc, cr, sw, bc, se}
}

// Regroup takes the nine advanced children (each at the same depth) and
// forms the four overlapping sub-quadrants TL', TR', BL', BR' (each a
// 4-tuple of three of the advanced children plus a shared corner),
// returning them at one depth higher.
func Regroup(f *forest.Forest, adv [9]forest.Node) (tl, tr, bl, br forest.Node) {
	// adv layout: [TL, TC, TR, CL, CC, CR, BL, BC, BR]
	d := adv[4].Depth + 1
	mk := func(a, b, c, dd forest.Node) forest.Node {
		idx := f.MakeNonLeaf(d, forest.Quad{a.Index, b.Index, c.Index, dd.Index})
		return forest.Node{Index: idx, Depth: d}
	}
	tl = mk(adv[0], adv[1], adv[3], adv[4])
	tr = mk(adv[1], adv[2], adv[4], adv[5])
	bl = mk(adv[3], adv[4], adv[6], adv[7])
	br = mk(adv[4], adv[5], adv[7], adv[8])
	return
}
