package engine

import (
	"hashlife/internal/forest"
	"hashlife/internal/lanes"
)

// streamingCapability is the lane-analysis engine variant: advance
// dispatches to lanes.StreamingRecurse, which fast-paths independent
// sublayers through IsSolitonic and otherwise falls back to the same
// Gosper recursion as the plain engine, backed by its own bi-result
// cache (spec §4.6-§4.7).
type streamingCapability struct {
	f     *forest.Forest
	cache *lanes.BiResultCache
}

func newStreamingCapability(f *forest.Forest) Capability {
	return &streamingCapability{f: f, cache: lanes.NewBiResultCache(streamingCacheSize)}
}

// streamingCacheSize bounds the bi-result LRU independently of the
// forest's own memory ceiling; it holds forest.Node pairs, not whole
// subtrees, so a generous fixed size is cheap.
const streamingCacheSize = 1 << 16

func (s *streamingCapability) Advance(n forest.Node, m uint8, e uint64) forest.Node {
	return lanes.StreamingRecurse(s.f, s.cache, n, m, e)
}

func (s *streamingCapability) ThresholdGC() bool {
	ran := s.f.GCPartial()
	if ran {
		// A GC pass can retire nodes the bi-result cache still
		// references by index; spec's cache-consistency invariant
		// extends to this cache the same way it does to the
		// per-node iterate_recurse memo.
		s.cache.Clear()
	}
	return ran
}

// StreamTree is a thin view over a Tree built with Config.Streaming
// set, adding the dual-layer pairing operations that only make sense
// for the streaming engine: combining two independently evolved
// single-layer universes into one dual-layer node, and asking whether
// they are currently solitonic.
type StreamTree struct {
	t *Tree
}

// NewStreamTree wraps t. Panics if t was not built with a streaming
// capability, since Pair/IsSolitonic require the Index2 slot that only
// the streaming engine's callers are expected to populate.
func NewStreamTree(t *Tree) *StreamTree {
	if _, ok := t.cap.(*streamingCapability); !ok {
		panic("engine: NewStreamTree requires a Tree built with Config.Streaming = true")
	}
	return &StreamTree{t: t}
}

// Pair combines two single-layer roots of equal depth into one
// dual-layer node addressable as a single streaming root.
func (st *StreamTree) Pair(a, b forest.Node) forest.Node {
	if a.Depth != b.Depth {
		panic("engine: Pair requires equal-depth nodes")
	}
	return forest.Node{Index: a.Index, Index2: b.Index, Depth: a.Depth}
}

// Split returns the two single-layer sublayers of a dual-layer node.
func (st *StreamTree) Split(n forest.Node) (a, b forest.Node) {
	return forest.Node{Index: n.Index, Depth: n.Depth}, forest.Node{Index: n.Index2, Depth: n.Depth}
}

// IsSolitonic reports whether n's two sublayers are non-interacting
// over the next iterate_recurse call (spec §4.6).
func (st *StreamTree) IsSolitonic(n forest.Node) bool {
	return lanes.IsSolitonic(st.t.f, n)
}

// Advance runs the streaming iterate_recurse on a dual-layer node.
func (st *StreamTree) Advance(n forest.Node, m uint8, e uint64) forest.Node {
	return st.t.Advance(n, m, e)
}
