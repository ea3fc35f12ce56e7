// Package forest implements the hypertree: a stack of per-layer KIV
// interning tables (one leaf table plus a growing sequence of non-leaf
// tables) that together represent the canonical DAG of quadtree nodes
// described in spec §3/§4.2.
package forest

import "hashlife/internal/kiv"

// Depth is the layer index of a node: 0 for a 16x16 leaf, d for a
// 2^(d+4) x 2^(d+4) non-leaf built from four depth-(d-1) children.
type Depth int

// NodeIndex is a dense handle into one layer's interning table.
type NodeIndex = kiv.Index

// Bitmap is the immutable key for a 16x16 leaf: four 64-bit words in
// Z-order (TL, TR, BL, BR), each word holding an 8x8 subsquare with bit
// (x + 8y) set for column x, row y.
type Bitmap [4]uint64

// IsZero reports whether the bitmap is the all-dead leaf (never interned).
func (b Bitmap) IsZero() bool { return b[0] == 0 && b[1] == 0 && b[2] == 0 && b[3] == 0 }

// Quad is the key for a non-leaf entry: the four child indices
// (TL, TR, BL, BR) at depth d-1.
type Quad [4]NodeIndex

// Quadrant positions, used throughout forest/hashlife/lanes.
const (
	TL = 0
	TR = 1
	BL = 2
	BR = 3
)

// Node is a hypernode handle: (index, index2, depth). A single-layer
// node has Index2 == kiv.Empty. A dual-layer (Beszel/Ulqoma) node shares
// a depth across both indices. Index == Index2 == 0 denotes the
// canonical all-dead node at that depth.
type Node struct {
	Index  NodeIndex
	Index2 NodeIndex
	Depth  Depth
}

// IsEmpty reports whether both layers of the node are the canonical
// empty index.
func (n Node) IsEmpty() bool { return n.Index == kiv.Empty && n.Index2 == kiv.Empty }

// IsSingleLayer reports whether the node carries only one sublayer.
func (n Node) IsSingleLayer() bool { return n.Index2 == kiv.Empty }

// Invalid is the sentinel hypernode returned for operations with no
// well-defined result (e.g. getchild on a leaf, per §4.2).
var Invalid = Node{Index: kiv.Invalid, Index2: kiv.Invalid, Depth: -1}

// IsInvalid reports whether n is the Invalid sentinel.
func (n Node) IsInvalid() bool { return n.Depth < 0 }

// RootHandle is a process-unique, opaque root registration id. Zero is
// never a valid handle (see spec §3/§6 "new_handle returns a non-zero
// opaque id").
type RootHandle uint64

// LaneInfo is the 48-bit lane descriptor from spec §4.5: which of the
// eight unit directions a node's content may admit translation along,
// and the 32-bit residue mask of lanes it occupies if so. It is stored
// on every entry (leaf and non-leaf) so the plain and streaming engines
// can share one forest; the plain HashLife engine simply never reads it.
type LaneInfo struct {
	Computed   bool
	Admissible uint8 // bits 0..3 SE,S,SW,W; bits 4..7 NW,N,NE,E
	Mask       uint32
}

// Direction bit positions within LaneInfo.Admissible.
const (
	DirSE = 1 << 0
	DirS  = 1 << 1
	DirSW = 1 << 2
	DirW  = 1 << 3
	DirNW = 1 << 4
	DirN  = 1 << 5
	DirNE = 1 << 6
	DirE  = 1 << 7
)

// LeafValue is the auxiliary payload carried by a leaf entry (spec §3).
type LeafValue struct {
	PopValid bool
	PopPrime uint64
	PopValue uint64
	Lanes    LaneInfo
}

// NonLeafValue is the auxiliary payload carried by a non-leaf entry at
// depth >= 1 (spec §3). Children are not duplicated here: they are the
// entry's key (Quad) in the owning layer's table.
type NonLeafValue struct {
	flags    gcflags
	Res      NodeIndex
	PopValue uint64
	Lanes    LaneInfo
}
