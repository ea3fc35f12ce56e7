package kiv

import "testing"

func TestGetOrInsertStableUntilGC(t *testing.T) {
	tbl := New[[4]uint64, int]()

	k := [4]uint64{1, 2, 3, 4}
	i1 := tbl.GetOrInsert(k, true)
	i2 := tbl.GetOrInsert(k, true)
	if i1 != i2 {
		t.Fatalf("same key returned different indices: %d != %d", i1, i2)
	}
	if i1 == Empty || i1 == Invalid {
		t.Fatalf("unexpected sentinel index %d", i1)
	}

	if got := tbl.GetOrInsert([4]uint64{9, 9, 9, 9}, false); got != Invalid {
		t.Fatalf("expected Invalid for absent key without insert, got %d", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	tbl := New[string, int]()
	i := tbl.Set("a", 1)
	if v := *tbl.Ind2Ptr(i); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
	j := tbl.Set("a", 2)
	if i != j {
		t.Fatalf("Set on existing key changed index")
	}
	if v := *tbl.Ind2Ptr(i); v != 2 {
		t.Fatalf("expected overwritten value 2, got %d", v)
	}
}

func TestGCTraverseSweepsUnmarked(t *testing.T) {
	tbl := New[string, int]()
	a := tbl.Set("a", 1)
	b := tbl.Set("b", 2)

	tbl.GCTraverse(false) // clear marks
	tbl.Mark(a)
	tbl.GCTraverse(true) // sweep

	if tbl.Size() != 1 {
		t.Fatalf("expected 1 live entry after sweep, got %d", tbl.Size())
	}
	if tbl.Ind2Ptr(a) == nil {
		t.Fatal("marked entry should survive sweep")
	}
	if tbl.Ind2Ptr(b) != nil {
		t.Fatal("unmarked entry should be reclaimed")
	}

	// A fresh insert should be able to reuse the tombstoned slot.
	c := tbl.Set("c", 3)
	if tbl.Ind2Ptr(c) == nil {
		t.Fatal("new insert after sweep should resolve")
	}
}

func TestGCTraverseNonDestructiveOnlyClearsMarks(t *testing.T) {
	tbl := New[string, int]()
	a := tbl.Set("a", 1)
	tbl.Mark(a)
	tbl.GCTraverse(false)
	if tbl.IsMarked(a) {
		t.Fatal("non-destructive traverse must clear mark flags")
	}
	if tbl.Size() != 1 {
		t.Fatal("non-destructive traverse must not reclaim entries")
	}
}
