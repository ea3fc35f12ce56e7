package hashlife

import (
	"testing"

	"hashlife/internal/forest"
)

// block2x2 returns a leaf bitmap with a 2x2 still life near its center,
// entirely within the leaf's TL word so it never touches a word seam.
func block2x2() forest.Bitmap {
	var bm forest.Bitmap
	set := func(x, y int) {
		bm[forest.TL] |= 1 << uint(x+8*y)
	}
	set(5, 5)
	set(6, 5)
	set(5, 6)
	set(6, 6)
	return bm
}

func depth2FromSingleLeaf(f *forest.Forest, bm forest.Bitmap) forest.Node {
	leaf := f.MakeLeaf(bm)
	d1 := f.MakeNonLeaf(1, forest.Quad{0, 0, 0, leaf})
	d2 := f.MakeNonLeaf(2, forest.Quad{d1, 0, 0, 0})
	return forest.Node{Index: d2, Depth: 2}
}

func TestRecurseEmptyStaysEmpty(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, forest.Bitmap{})
	got := Recurse(f, n, 1, 0)
	if !got.IsEmpty() {
		t.Fatalf("advancing an all-dead universe must stay empty, got %+v", got)
	}
}

func TestRecurseBlockIsStill(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, block2x2())

	before := Population(f, n, 1000003)
	got := Recurse(f, n, 1, 0)
	after := Population(f, got, 1000003)

	if before != after {
		t.Fatalf("a 2x2 block must be a still life: population before=%d after=%d", before, after)
	}
	if before != 4 {
		t.Fatalf("expected population 4, got %d", before)
	}
}

func TestRecurseProjectIsCenteredChild(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, block2x2())

	got := Recurse(f, n, 0, 0)
	want := project(f, n)
	if got != want {
		t.Fatalf("Recurse(m=0) must equal project: got=%+v want=%+v", got, want)
	}
}

func TestRecurseMemoizesResult(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, block2x2())

	first := Recurse(f, n, 1, 0)
	v := f.NonLeafValuePtr(n.Depth, n.Index)
	if !v.ResHit(1, 0, n.Depth-1) {
		t.Fatalf("expected (m=1,e=0) cache hit to be recorded on the parent entry")
	}
	second := Recurse(f, n, 1, 0)
	if first != second {
		t.Fatalf("memoized Recurse must be idempotent: first=%+v second=%+v", first, second)
	}
}

func TestPyramidUpThenDownRoundTrips(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, block2x2())

	grown := PyramidUp(f, n)
	if grown.Depth != n.Depth+1 {
		t.Fatalf("PyramidUp must grow depth by exactly one, got %d want %d", grown.Depth, n.Depth+1)
	}
	shrunk := PyramidDown(f, grown)
	if shrunk.Depth != n.Depth || shrunk.Index != n.Index {
		t.Fatalf("PyramidDown must undo a bare PyramidUp: got %+v want %+v", shrunk, n)
	}
}

func TestPyramidDownLeavesNonEmptyBorderUnchanged(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	var bm forest.Bitmap
	bm[forest.TL] = 1 // a live cell right at a corner, touching the border
	n := depth2FromSingleLeaf(f, bm)

	got := PyramidDown(f, n)
	if got.Depth != n.Depth {
		t.Fatalf("PyramidDown must not shrink a universe with live border cells, got depth %d", got.Depth)
	}
}

func TestBooleanRecurseMatchesWordWiseSemantics(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	a := depth2FromSingleLeaf(f, forest.Bitmap{0xff, 0, 0, 0})
	b := depth2FromSingleLeaf(f, forest.Bitmap{0x0f, 0, 0, 0})

	and := BooleanRecurse(f, a, b, OpAND)
	or := BooleanRecurse(f, a, b, OpOR)
	xor := BooleanRecurse(f, a, b, OpXOR)
	andnot := BooleanRecurse(f, a, b, OpANDNOT)

	wantAND := depth2FromSingleLeaf(f, forest.Bitmap{0x0f, 0, 0, 0})
	wantOR := depth2FromSingleLeaf(f, forest.Bitmap{0xff, 0, 0, 0})
	wantXOR := depth2FromSingleLeaf(f, forest.Bitmap{0xf0, 0, 0, 0})
	wantANDNOT := depth2FromSingleLeaf(f, forest.Bitmap{0xf0, 0, 0, 0})

	if and.Index != wantAND.Index {
		t.Fatalf("AND mismatch")
	}
	if or.Index != wantOR.Index {
		t.Fatalf("OR mismatch")
	}
	if xor.Index != wantXOR.Index {
		t.Fatalf("XOR mismatch")
	}
	if andnot.Index != wantANDNOT.Index {
		t.Fatalf("ANDNOT mismatch")
	}
}

func TestBreachCollapsesDualLayerViaOR(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	a := depth2FromSingleLeaf(f, forest.Bitmap{0xff, 0, 0, 0})
	b := depth2FromSingleLeaf(f, forest.Bitmap{0x0f, 0, 0, 0})

	dual := forest.Node{Index: a.Index, Index2: b.Index, Depth: a.Depth}
	got := Breach(f, dual)
	want := BooleanRecurse(f, a, b, OpOR)
	if got.Index != want.Index {
		t.Fatalf("Breach must equal boolean OR of the two sublayers")
	}
}

func TestBreachIsIdentityForSingleLayer(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := depth2FromSingleLeaf(f, block2x2())
	got := Breach(f, n)
	if got != n {
		t.Fatalf("Breach must be identity on a single-layer node: got=%+v want=%+v", got, n)
	}
}
