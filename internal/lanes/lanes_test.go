package lanes

import (
	"testing"

	"hashlife/internal/forest"
)

func TestLanesOfEmptyNodeIsZero(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := forest.Node{Depth: 2}
	info := Lanes(f, n)
	if info.Admissible != 0 || info.Mask != 0 {
		t.Fatalf("empty node must have zero lanes, got %+v", info)
	}
}

func TestIsSolitonicFalseWhenEitherSideEmpty(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	var bm forest.Bitmap
	bm[forest.TL] = 1 << (5 + 8*5)
	leaf := f.MakeLeaf(bm)

	pair := forest.Node{Index: leaf, Index2: 0, Depth: 0}
	if IsSolitonic(f, pair) {
		t.Fatalf("a pair with an empty sublayer must never be solitonic")
	}
}

func TestIsSolitonicFalseForSingleLayer(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	n := forest.Node{Depth: 1}
	if IsSolitonic(f, n) {
		t.Fatalf("a single-layer node must never report solitonic")
	}
}

func TestDetermineDirectionStillLifeAdmitsNoDirection(t *testing.T) {
	var bm forest.Bitmap
	set := func(x, y int) { bm[forest.TL] |= 1 << uint(x+8*y) }
	set(5, 5)
	set(6, 5)
	set(5, 6)
	set(6, 6)

	info := determineDirection(bm)
	if info.Admissible != 0 {
		t.Fatalf("a centered still life must not match any shifted copy of itself: got admissible=%08b", info.Admissible)
	}
}

func TestDetermineDirectionEmptyLeafAdmitsNothing(t *testing.T) {
	info := determineDirection(forest.Bitmap{})
	if info.Admissible != 0 || info.Mask != 0 {
		t.Fatalf("an empty leaf must have no admissible directions or lanes, got %+v", info)
	}
}
