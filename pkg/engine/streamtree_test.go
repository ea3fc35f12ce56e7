package engine

import (
	"testing"

	"hashlife/internal/forest"
)

func TestNewStreamTreePanicsOnPlainTree(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewStreamTree to panic on a plain Tree")
		}
	}()
	NewStreamTree(NewTree(nil))
}

func TestPairAndSplitRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Streaming = true
	tr := NewTree(cfg)
	st := NewStreamTree(tr)

	leafA := tr.f.MakeLeaf(block2x2())
	var bmB forest.Bitmap
	bmB[forest.BR] = 0xff
	leafB := tr.f.MakeLeaf(bmB)
	a := forest.Node{Index: leafA, Depth: 0}
	b := forest.Node{Index: leafB, Depth: 0}

	paired := st.Pair(a, b)
	gotA, gotB := st.Split(paired)
	if gotA.Index != a.Index || gotB.Index != b.Index {
		t.Fatalf("Split(Pair(a, b)) mismatch: got (%+v, %+v), want (%+v, %+v)", gotA, gotB, a, b)
	}
}

func TestIsSolitonicFalseWhenOneSublayerEmpty(t *testing.T) {
	cfg := NewConfig()
	cfg.Streaming = true
	tr := NewTree(cfg)
	st := NewStreamTree(tr)

	leaf := tr.f.MakeLeaf(block2x2())
	a := forest.Node{Index: leaf, Depth: 0}
	empty := forest.Node{Depth: 0}
	paired := st.Pair(a, empty)

	if st.IsSolitonic(paired) {
		t.Fatal("expected IsSolitonic to be false when one sublayer is empty")
	}
}
