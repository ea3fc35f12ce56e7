package hashlife

import "hashlife/internal/forest"

// NaiveStep advances a bounded cell grid by one generation of Life
// B3/S23, treating cells outside [0,w)x[0,h) as permanently dead. It is
// a direct transcription of the teacher's toroidal Life.Step, with the
// wraparound removed to match this engine's own boundary semantics (an
// unbounded universe padded with empty cells, not a torus). It exists
// purely as a test oracle for Recurse: slow, unmemoized, obviously
// correct by inspection.
func NaiveStep(cells []uint8, w, h int) []uint8 {
	next := make([]uint8, len(cells))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					n += int(cells[ny*w+nx])
				}
			}
			idx := y*w + x
			alive := cells[idx] == 1
			if n == 3 || (alive && n == 2) {
				next[idx] = 1
			}
		}
	}
	return next
}

// BitmapToCells flattens a leaf's four Z-order words into a 16x16
// row-major cell grid, for feeding NaiveStep or a random soup generator.
func BitmapToCells(bm forest.Bitmap) []uint8 {
	cells := make([]uint8, 16*16)
	place := func(word uint64, ox, oy int) {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if word&(1<<uint(x+8*y)) != 0 {
					cells[(oy+y)*16+(ox+x)] = 1
				}
			}
		}
	}
	place(bm[forest.TL], 0, 0)
	place(bm[forest.TR], 8, 0)
	place(bm[forest.BL], 0, 8)
	place(bm[forest.BR], 8, 8)
	return cells
}

// CellsToNode builds a depth-d node from a (16<<d)-square row-major
// cell grid, recursively quartering down to leaf granularity. It
// complements BitmapToCells/CellsToBitmap at whole-subtree scale, used
// by differential tests that need to seed an arbitrary pattern at a
// chosen depth.
func CellsToNode(f *forest.Forest, cells []uint8, side int, depth forest.Depth) forest.Node {
	if depth == 0 {
		if side != 16 {
			panic("hashlife: CellsToNode depth 0 requires a 16x16 grid")
		}
		return forest.Node{Index: f.MakeLeaf(CellsToBitmap(cells)), Depth: 0}
	}
	half := side / 2
	tl := CellsToNode(f, subgrid(cells, side, 0, 0, half), half, depth-1)
	tr := CellsToNode(f, subgrid(cells, side, half, 0, half), half, depth-1)
	bl := CellsToNode(f, subgrid(cells, side, 0, half, half), half, depth-1)
	br := CellsToNode(f, subgrid(cells, side, half, half, half), half, depth-1)
	idx := f.MakeNonLeaf(depth, forest.Quad{tl.Index, tr.Index, bl.Index, br.Index})
	return forest.Node{Index: idx, Depth: depth}
}

// NodeToCells is the inverse of CellsToNode: flattens a node into a
// row-major cell grid of side 16<<depth.
func NodeToCells(f *forest.Forest, n forest.Node) []uint8 {
	side := 16 << uint(n.Depth)
	out := make([]uint8, side*side)
	writeNode(f, n, out, side, 0, 0)
	return out
}

func writeNode(f *forest.Forest, n forest.Node, out []uint8, side, ox, oy int) {
	if n.IsEmpty() {
		return
	}
	if n.Depth == 0 {
		cells := BitmapToCells(f.LeafBitmap(n.Index))
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				out[(oy+y)*side+(ox+x)] = cells[y*16+x]
			}
		}
		return
	}
	half := (16 << uint(n.Depth)) / 2
	q := f.NonLeafChildren(n.Depth, n.Index)
	writeNode(f, forest.Node{Index: q[forest.TL], Depth: n.Depth - 1}, out, side, ox, oy)
	writeNode(f, forest.Node{Index: q[forest.TR], Depth: n.Depth - 1}, out, side, ox+half, oy)
	writeNode(f, forest.Node{Index: q[forest.BL], Depth: n.Depth - 1}, out, side, ox, oy+half)
	writeNode(f, forest.Node{Index: q[forest.BR], Depth: n.Depth - 1}, out, side, ox+half, oy+half)
}

func subgrid(cells []uint8, side, ox, oy, sub int) []uint8 {
	out := make([]uint8, sub*sub)
	for y := 0; y < sub; y++ {
		for x := 0; x < sub; x++ {
			out[y*sub+x] = cells[(oy+y)*side+(ox+x)]
		}
	}
	return out
}

// CellsToBitmap packs a 16x16 row-major cell grid back into a Bitmap.
func CellsToBitmap(cells []uint8) forest.Bitmap {
	var bm forest.Bitmap
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if cells[y*16+x] == 0 {
				continue
			}
			switch {
			case x < 8 && y < 8:
				bm[forest.TL] |= 1 << uint(x+8*y)
			case x >= 8 && y < 8:
				bm[forest.TR] |= 1 << uint((x-8)+8*y)
			case x < 8 && y >= 8:
				bm[forest.BL] |= 1 << uint(x+8*(y-8))
			default:
				bm[forest.BR] |= 1 << uint((x-8)+8*(y-8))
			}
		}
	}
	return bm
}
