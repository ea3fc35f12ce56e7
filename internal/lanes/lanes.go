// Package lanes implements the lane-analysis layer of the streaming
// extension (spec §4.6): a per-node 48-bit descriptor of which unit
// directions a node's content may translate along, and the pairwise
// non-interaction predicate built on top of it.
package lanes

import (
	"hashlife/internal/forest"
	"hashlife/internal/hashlife"
	"hashlife/internal/leafkernel"
	"hashlife/internal/metrics"
)

// Direction bit positions, re-exported from forest for callers that
// only need the lane package.
const (
	DirSE = forest.DirSE
	DirS  = forest.DirS
	DirSW = forest.DirSW
	DirW  = forest.DirW
	DirNW = forest.DirNW
	DirN  = forest.DirN
	DirNE = forest.DirNE
	DirE  = forest.DirE
)

// lane mask bits for the axial and diagonal lane families (spec §4.6).
const (
	laneAxial0    = 1 << 0
	laneAxial1    = 1 << 1
	laneDiagonal2 = 1 << 2
)

// Lanes computes (and caches on the forest entry) the lane descriptor
// of n, a single-layer node. Matches forest.LaneInfo's field layout.
func Lanes(f *forest.Forest, n forest.Node) forest.LaneInfo {
	if n.IsEmpty() {
		return forest.LaneInfo{Computed: true}
	}
	if n.Depth == 0 {
		return leafLanes(f, n)
	}
	return nonLeafLanes(f, n)
}

func leafLanes(f *forest.Forest, n forest.Node) forest.LaneInfo {
	v := f.LeafValuePtr(n.Index)
	if v != nil && v.Lanes.Computed {
		return v.Lanes
	}
	bm := f.LeafBitmap(n.Index)
	info := determineDirection(bm)
	if v != nil {
		v.Lanes = info
	}
	return info
}

func nonLeafLanes(f *forest.Forest, n forest.Node) forest.LaneInfo {
	v := f.NonLeafValuePtr(n.Depth, n.Index)
	if v != nil && v.Lanes.Computed {
		return v.Lanes
	}

	tl := Lanes(f, f.GetChild(n, forest.TL))
	tr := Lanes(f, f.GetChild(n, forest.TR))
	bl := Lanes(f, f.GetChild(n, forest.BL))
	br := Lanes(f, f.GetChild(n, forest.BR))

	corner := tl.Admissible & tr.Admissible & bl.Admissible & br.Admissible
	if corner == 0 {
		info := forest.LaneInfo{Computed: true}
		if v != nil {
			v.Lanes = info
		}
		return info
	}

	nine := hashlife.NineChildren(f, n)
	overlap := [5]forest.Node{nine[1], nine[4], nine[7], nine[3], nine[5]} // TC, CC, BC, CL, CR
	adml := corner
	var overlapLanes [5]forest.LaneInfo
	for i, c := range overlap {
		overlapLanes[i] = Lanes(f, c)
		adml &= overlapLanes[i].Admissible
	}
	if adml == 0 {
		info := forest.LaneInfo{Computed: true}
		if v != nil {
			v.Lanes = info
		}
		return info
	}

	a := uint32(0)
	if n.Depth < 6 {
		a = uint32(1) << uint(n.Depth-1)
	}
	a2 := (2 * a) % 32

	mask := tl.Mask | tr.Mask | bl.Mask | br.Mask
	if adml&(DirW|DirE) != 0 {
		mask |= rotl32(overlapLanes[3].Mask, a) // CL
		mask |= overlapLanes[1].Mask            // CC
		mask |= rotl32(overlapLanes[4].Mask, 32-a%32) // CR
	}
	if adml&(DirNW|DirSE) != 0 {
		mask |= rotl32(overlapLanes[0].Mask, a2) // TC
		mask |= rotl32(overlapLanes[3].Mask, a)
		mask |= overlapLanes[1].Mask
		mask |= rotl32(overlapLanes[4].Mask, 32-a%32)
		mask |= rotl32(overlapLanes[2].Mask, 32-a2%32) // BC
	}
	if adml&(DirN|DirS) != 0 {
		mask |= rotl32(overlapLanes[0].Mask, a)
		mask |= overlapLanes[1].Mask
		mask |= rotl32(overlapLanes[2].Mask, 32-a%32)
	}
	if adml&(DirNE|DirSW) != 0 {
		mask |= rotl32(overlapLanes[0].Mask, a2)
		mask |= rotl32(overlapLanes[4].Mask, a)
		mask |= overlapLanes[1].Mask
		mask |= rotl32(overlapLanes[3].Mask, 32-a%32)
		mask |= rotl32(overlapLanes[2].Mask, 32-a2%32)
	}

	info := forest.LaneInfo{Computed: true, Admissible: adml, Mask: mask}
	if v != nil {
		v.Lanes = info
	}
	return info
}

// rotl32 performs a cyclic rotation of a 32-bit lane mask by n bits
// (n may exceed 32; only n mod 32 matters).
func rotl32(x uint32, n uint32) uint32 {
	n %= 32
	return (x << n) | (x >> (32 - n))
}

// determineDirection computes a leaf's admissible-direction byte and
// lane mask (spec §4.6): advance the leaf by 4 generations in
// isolation (embedded centered in an otherwise-empty 32x32), then
// compare against the same leaf shifted by each unit direction.
//
// Simplification: the spec compares the inner 8x8 sub-centre; this
// compares the full central 16x16 instead. Equality at 16x16 implies
// equality at the inner 8x8, so this is a strictly more conservative
// (never more permissive) substitute — it can only under-admit a
// direction, never wrongly admit one, preserving is_solitonic's
// soundness at the cost of some missed streaming opportunities.
//
// An empty leaf admits no direction and occupies no lane, the same
// descriptor Lanes returns for the empty node.
func determineDirection(bm forest.Bitmap) forest.LaneInfo {
	if bm.IsZero() {
		return forest.LaneInfo{Computed: true}
	}
	base := stepCenter(bm, 0, 0, 4)

	var admissible uint8
	test := func(bit uint8, dx, dy int) {
		shifted := stepCenter(bm, dx, dy, 0)
		if shifted == base {
			admissible |= bit
		}
	}
	test(DirE, 1, 0)
	test(DirW, -1, 0)
	test(DirN, 0, -1)
	test(DirS, 0, 1)
	test(DirNE, 1, -1)
	test(DirNW, -1, -1)
	test(DirSE, 1, 1)
	test(DirSW, -1, 1)

	if admissible == 0 {
		return forest.LaneInfo{Computed: true}
	}

	var mask uint32
	nonZero := base != (forest.Bitmap{})
	if nonZero {
		if admissible&(DirE|DirW|DirN|DirS) != 0 {
			mask |= laneAxial0 | laneAxial1
		}
		if admissible&(DirNE|DirSW|DirNW|DirSE) != 0 {
			mask |= laneAxial0 | laneAxial1 | laneDiagonal2
		}
	}

	return forest.LaneInfo{Computed: true, Admissible: admissible, Mask: mask}
}

// stepCenter embeds bm centered in an otherwise-empty 32x32 grid,
// shifted by (dx, dy) cells, advances it by gens generations, and
// returns the resulting central 16x16 as a Bitmap.
func stepCenter(bm forest.Bitmap, dx, dy, gens int) forest.Bitmap {
	var rows [32]uint32
	paintBitmap(&rows, bm, 8+dx, 8+dy)

	q := quadrantFromRows(rows)
	if gens == 0 {
		return forest.Bitmap(centerLeaf(rows))
	}
	out := leafkernel.Step(gens, q)
	return forest.Bitmap(out)
}

// paintBitmap writes bm's 16x16 content into a 32-row grid at the
// given top-left offset, clipping anything that falls outside [0,32).
func paintBitmap(rows *[32]uint32, bm forest.Bitmap, offX, offY int) {
	for y := 0; y < 16; y++ {
		gy := offY + y
		if gy < 0 || gy >= 32 {
			continue
		}
		for x := 0; x < 16; x++ {
			gx := offX + x
			if gx < 0 || gx >= 32 {
				continue
			}
			if bitmapBit(bm, x, y) {
				rows[gy] |= 1 << uint(gx)
			}
		}
	}
}

// bitmapBit reads bit (x, y) of a 16x16 Bitmap using the Z-order word
// convention shared with leafkernel.Leaf (spec §3).
func bitmapBit(bm forest.Bitmap, x, y int) bool {
	word := 0
	if x >= 8 {
		word |= 1
	}
	if y >= 8 {
		word |= 2
	}
	lx, ly := x%8, y%8
	return bm[word]&(1<<uint(lx+8*ly)) != 0
}

// quadrantFromRows repacks a 32x32 row-major bit grid into the
// leafkernel.Quadrant form (four 16x16 Z-ordered leaves).
func quadrantFromRows(rows [32]uint32) leafkernel.Quadrant {
	var q leafkernel.Quadrant
	for qy := 0; qy < 2; qy++ {
		for qx := 0; qx < 2; qx++ {
			var l leafkernel.Leaf
			for y := 0; y < 16; y++ {
				gy := qy*16 + y
				for x := 0; x < 16; x++ {
					gx := qx*16 + x
					if rows[gy]&(1<<uint(gx)) != 0 {
						word := 0
						if x >= 8 {
							word |= 1
						}
						if y >= 8 {
							word |= 2
						}
						l[word] |= 1 << uint((x%8)+8*(y%8))
					}
				}
			}
			q[qy][qx] = l
		}
	}
	return q
}

// centerLeaf extracts the central 16x16 (rows/cols 8..23) of a 32-row
// grid without advancing, repacked into Z-order leaf form.
func centerLeaf(rows [32]uint32) leafkernel.Leaf {
	var l leafkernel.Leaf
	for y := 0; y < 16; y++ {
		gy := y + 8
		for x := 0; x < 16; x++ {
			gx := x + 8
			if rows[gy]&(1<<uint(gx)) != 0 {
				word := 0
				if x >= 8 {
					word |= 1
				}
				if y >= 8 {
					word |= 2
				}
				l[word] |= 1 << uint((x%8)+8*(y%8))
			}
		}
	}
	return l
}

// IsSolitonic reports whether the two sublayers of a dual-layer node
// provably cannot interact over the next step (spec §4.6): both sides
// non-empty, their admissible-direction bytes overlap, their lane
// masks are disjoint, and at least one direction pairing crosses
// between the "upper" (NW/N/NE/E) and "lower" (SE/S/SW/W) nibbles.
func IsSolitonic(f *forest.Forest, n forest.Node) bool {
	if n.IsSingleLayer() {
		return false
	}
	a := forest.Node{Index: n.Index, Depth: n.Depth}
	b := forest.Node{Index: n.Index2, Depth: n.Depth}
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	la := Lanes(f, a)
	lb := Lanes(f, b)

	if la.Admissible&lb.Admissible == 0 {
		return false
	}
	if la.Mask&lb.Mask != 0 {
		return false
	}
	upperA := la.Admissible >> 4
	upperB := lb.Admissible >> 4
	cross := (upperA & lb.Admissible) | (upperB & la.Admissible)
	if cross&0x0f == 0 {
		return false
	}
	metrics.StreamingSolitonicDetections.Inc()
	return true
}
