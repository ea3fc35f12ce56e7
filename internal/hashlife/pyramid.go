package hashlife

import "hashlife/internal/forest"

// PyramidUp embeds n at the geometric center of a universe twice as
// large, padding the new border with empty space (spec §4.5). Dual-
// layer nodes are expanded per sublayer independently; a single empty
// index stays empty rather than growing an empty subtree.
func PyramidUp(f *forest.Forest, n forest.Node) forest.Node {
	return forest.Node{
		Index:  pyramidUpIndex(f, n.Depth, n.Index),
		Index2: pyramidUpIndex(f, n.Depth, n.Index2),
		Depth:  n.Depth + 1,
	}
}

// pyramidUpIndex performs the single-layer embed: building, for each of
// the four new depth-d children, a quad with the old depth-(d-1) child
// in the corner facing the center and empty elsewhere. This is the
// standard grandchild-reassembly construction for "wrap in an empty
// envelope, centered" — equivalent to the wrap-then-shift-by-(-1,-1)
// description in spec §4.5 without needing a general toroidal shift.
// A leaf (depth 0) is embedded the same way, using its four 8x8 words
// as the "children".
func pyramidUpIndex(f *forest.Forest, depth forest.Depth, idx forest.NodeIndex) forest.NodeIndex {
	if idx == 0 {
		return 0
	}
	if depth == 0 {
		bm := f.LeafBitmap(idx)
		return f.MakeNonLeaf(1, forest.Quad{
			f.MakeLeaf(forest.Bitmap{0, 0, 0, bm[forest.TL]}),
			f.MakeLeaf(forest.Bitmap{0, 0, bm[forest.TR], 0}),
			f.MakeLeaf(forest.Bitmap{0, bm[forest.BL], 0, 0}),
			f.MakeLeaf(forest.Bitmap{bm[forest.BR], 0, 0, 0}),
		})
	}
	q := f.NonLeafChildren(depth, idx)

	newTL := f.MakeNonLeaf(depth, forest.Quad{0, 0, 0, q[forest.TL]})
	newTR := f.MakeNonLeaf(depth, forest.Quad{0, 0, q[forest.TR], 0})
	newBL := f.MakeNonLeaf(depth, forest.Quad{0, q[forest.BL], 0, 0})
	newBR := f.MakeNonLeaf(depth, forest.Quad{q[forest.BR], 0, 0, 0})

	return f.MakeNonLeaf(depth+1, forest.Quad{newTL, newTR, newBL, newBR})
}

// PyramidDown drops one or more depths while the outer border is
// entirely empty, returning n unchanged once it no longer is (spec
// §4.5). Dual-layer inputs are shrunk per sublayer and then re-aligned
// to a common depth by pyramiding the shallower one back up.
func PyramidDown(f *forest.Forest, n forest.Node) forest.Node {
	if n.IsSingleLayer() {
		return shrinkSingleLayer(f, n)
	}
	s1 := shrinkSingleLayer(f, forest.Node{Index: n.Index, Depth: n.Depth})
	s2 := shrinkSingleLayer(f, forest.Node{Index: n.Index2, Depth: n.Depth})
	for s1.Depth < s2.Depth {
		s1 = PyramidUp(f, s1)
	}
	for s2.Depth < s1.Depth {
		s2 = PyramidUp(f, s2)
	}
	return forest.Node{Index: s1.Index, Index2: s2.Index, Depth: s1.Depth}
}

func shrinkSingleLayer(f *forest.Forest, n forest.Node) forest.Node {
	for n.Depth >= 2 && borderEmpty(f, n) {
		q := f.NonLeafChildren(n.Depth, n.Index)
		qtl := f.NonLeafChildren(n.Depth-1, q[forest.TL])
		qtr := f.NonLeafChildren(n.Depth-1, q[forest.TR])
		qbl := f.NonLeafChildren(n.Depth-1, q[forest.BL])
		qbr := f.NonLeafChildren(n.Depth-1, q[forest.BR])
		idx := f.MakeNonLeaf(n.Depth-1, forest.Quad{
			qtl[forest.BR], qtr[forest.BL], qbl[forest.TR], qbr[forest.TL],
		})
		n = forest.Node{Index: idx, Depth: n.Depth - 1}
	}
	return n
}

// borderEmpty reports whether all twelve outer grandchild quadrants of
// n's four children are empty (the three quadrants of each child not
// facing the shared center).
func borderEmpty(f *forest.Forest, n forest.Node) bool {
	if n.Index == 0 {
		return true
	}
	q := f.NonLeafChildren(n.Depth, n.Index)

	tl := f.NonLeafChildren(n.Depth-1, q[forest.TL])
	if tl[forest.TL] != 0 || tl[forest.TR] != 0 || tl[forest.BL] != 0 {
		return false
	}
	tr := f.NonLeafChildren(n.Depth-1, q[forest.TR])
	if tr[forest.TL] != 0 || tr[forest.TR] != 0 || tr[forest.BR] != 0 {
		return false
	}
	bl := f.NonLeafChildren(n.Depth-1, q[forest.BL])
	if bl[forest.TL] != 0 || bl[forest.BL] != 0 || bl[forest.BR] != 0 {
		return false
	}
	br := f.NonLeafChildren(n.Depth-1, q[forest.BR])
	if br[forest.TR] != 0 || br[forest.BL] != 0 || br[forest.BR] != 0 {
		return false
	}
	return true
}
