package macrocell

import (
	"strings"
	"testing"

	"hashlife/internal/forest"
)

func glider16() forest.Bitmap {
	var bm forest.Bitmap
	set := func(x, y int) { bm[forest.TL] |= 1 << uint(x+8*y) }
	set(5, 4)
	set(6, 5)
	set(4, 6)
	set(5, 6)
	set(6, 6)
	return bm
}

func TestWriteEmitsHeader(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	w := NewWriter(f)
	out := w.Write(forest.Node{Depth: 1})
	if !strings.HasPrefix(out, Header+"\n") {
		t.Fatalf("expected output to start with the macrocell header, got %q", out)
	}
}

func TestRoundTripLeafThroughNonLeaf(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	leaf := f.MakeLeaf(glider16())
	root := forest.Node{Index: f.MakeNonLeaf(1, forest.Quad{0, 0, 0, leaf}), Depth: 1}

	w := NewWriter(f)
	doc := w.Write(root)

	r := NewReader(f, nil)
	got, err := r.Read(doc)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.Index != root.Index || got.Depth != root.Depth {
		t.Fatalf("round trip mismatch: got=%+v want=%+v\ndoc=%s", got, root, doc)
	}
}

func TestRoundTripEmptyRoot(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	w := NewWriter(f)
	doc := w.Write(forest.Node{Depth: 2})

	r := NewReader(f, nil)
	got, err := r.Read(doc)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatalf("expected an empty root, got %+v", got)
	}
}

func TestReadSkipsCommentsAndBlankLines(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	leaf := f.MakeLeaf(glider16())
	root := forest.Node{Index: leaf, Depth: 0}

	w := NewWriter(f)
	doc := w.Write(root)
	withComments := "# a comment\n\n[ignored]\n" + doc + "\n# trailing\n"

	r := NewReader(f, nil)
	got, err := r.Read(withComments)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.Index != root.Index {
		t.Fatalf("expected comments/blank lines to be ignored, got %+v", got)
	}
}

func TestReadSkipsMalformedNodeLine(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	leaf := f.MakeLeaf(glider16())
	root := forest.Node{Index: leaf, Depth: 0}

	w := NewWriter(f)
	doc := w.Write(root)
	doc += "4 not a number\n"

	r := NewReader(f, nil)
	got, err := r.Read(doc)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.Index != root.Index {
		t.Fatalf("malformed trailing line must not change the parsed root: got=%+v want=%+v", got, root)
	}
}
