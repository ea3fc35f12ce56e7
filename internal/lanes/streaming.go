package lanes

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"hashlife/internal/forest"
	"hashlife/internal/hashlife"
	"hashlife/internal/metrics"
)

// biKey is the memoization key for the paired recursion: the two
// sub-indices, their shared depth, and the (m, e) time-advance request
// (spec §4.7 "encoded(m, e)" — kept as a plain struct field pair here
// since Go's map/LRU keys need no bit-packing to be comparable).
type biKey struct {
	i1, i2 forest.NodeIndex
	depth  forest.Depth
	m      uint8
	e      uint64
}

// BiResultCache is the dedicated memo table for the streaming paired
// recursion (spec §4.7), separate from the forest's own iterate_recurse
// cache since a pair's result shares no canonical identity with either
// sub-index the way a single-layer result does with its parent entry.
type BiResultCache struct {
	cache *lru.Cache[biKey, forest.Node]
}

// NewBiResultCache constructs a bi-result cache holding up to size
// entries, evicting least-recently-used entries once full.
func NewBiResultCache(size int) *BiResultCache {
	c, err := lru.New[biKey, forest.Node](size)
	if err != nil {
		panic(err)
	}
	return &BiResultCache{cache: c}
}

// Clear empties the cache. The engine calls it after every forest GC
// pass it runs, since a sweep can retire indices that cached pair
// results still name.
func (c *BiResultCache) Clear() {
	c.cache.Purge()
	metrics.StreamingBiResultCacheSize.Set(0)
}

// Len reports the number of live entries, for GC-trigger accounting.
func (c *BiResultCache) Len() int {
	return c.cache.Len()
}

// StreamingRecurse computes the centered half-size dual-layer node of
// n advanced by m*2^e generations, exploiting non-interaction between
// n's two sublayers wherever is_solitonic permits (spec §4.7). A
// single-layer n is forwarded straight to the plain HashLife recursion.
func StreamingRecurse(f *forest.Forest, cache *BiResultCache, n forest.Node, m uint8, e uint64) forest.Node {
	if n.Depth < 1 {
		panic("lanes: StreamingRecurse requires depth >= 1")
	}
	if n.IsSingleLayer() {
		return hashlife.Recurse(f, n, m, e)
	}

	if IsSolitonic(f, n) {
		a := forest.Node{Index: n.Index, Depth: n.Depth}
		b := forest.Node{Index: n.Index2, Depth: n.Depth}
		ra := hashlife.Recurse(f, a, m, e)
		rb := hashlife.Recurse(f, b, m, e)
		if ra.IsEmpty() {
			return tagByLaneFamily(f, rb)
		}
		if rb.IsEmpty() {
			return tagByLaneFamily(f, ra)
		}
		return forest.Node{Index: ra.Index, Index2: rb.Index, Depth: ra.Depth}
	}

	key := biKey{n.Index, n.Index2, n.Depth, m, e}
	if cache != nil {
		if v, ok := cache.cache.Get(key); ok {
			return v
		}
	}

	var result forest.Node
	if n.Depth == 1 {
		result = baseStreamingStep(f, n, m, e)
	} else {
		result = streamingRecurseCase(f, cache, n, m, e)
	}

	if cache != nil {
		cache.cache.Add(key, result)
		metrics.StreamingBiResultCacheSize.Set(float64(cache.cache.Len()))
	}
	return result
}

// tagByLaneFamily sorts a merged single-sublayer result into the
// Beszel (index) or Ulqoma (index2) slot by inspecting its admissible
// directions, per spec §4.7.
func tagByLaneFamily(f *forest.Forest, r forest.Node) forest.Node {
	if r.IsEmpty() {
		return forest.Node{Depth: r.Depth}
	}
	info := Lanes(f, r)
	if info.Admissible&(DirW|DirNW|DirN|DirNE) != 0 {
		return forest.Node{Index2: r.Index, Depth: r.Depth}
	}
	return forest.Node{Index: r.Index, Depth: r.Depth}
}

// baseStreamingStep handles depth 1: breach the pair into a single
// layer, advance it with the plain recursion, then re-sort the output.
func baseStreamingStep(f *forest.Forest, n forest.Node, m uint8, e uint64) forest.Node {
	single := hashlife.Breach(f, n)
	r := hashlife.Recurse(f, single, m, e)
	return tagByLaneFamily(f, r)
}

// streamingRecurseCase is the depth > 1 recursive case: nine-children
// per sublayer, paired advancement of each overlap, then regroup and
// recurse on the four resulting dual-layer quadrants.
func streamingRecurseCase(f *forest.Forest, cache *BiResultCache, n forest.Node, m uint8, e uint64) forest.Node {
	nineA := hashlife.NineChildren(f, forest.Node{Index: n.Index, Depth: n.Depth})
	nineB := hashlife.NineChildren(f, forest.Node{Index: n.Index2, Depth: n.Depth})

	var advanced [9]forest.Node
	oneStage := uint64(n.Depth) > e+1
	for i := range advanced {
		pair := forest.Node{Index: nineA[i].Index, Index2: nineB[i].Index, Depth: nineA[i].Depth}
		if oneStage {
			advanced[i] = projectPair(f, pair)
		} else {
			advanced[i] = StreamingRecurse(f, cache, pair, m, e)
		}
	}

	var advIdx, advIdx2 [9]forest.Node
	for i, a := range advanced {
		advIdx[i] = forest.Node{Index: a.Index, Depth: a.Depth}
		advIdx2[i] = forest.Node{Index: a.Index2, Depth: a.Depth}
	}
	tl1, tr1, bl1, br1 := hashlife.Regroup(f, advIdx)
	tl2, tr2, bl2, br2 := hashlife.Regroup(f, advIdx2)

	childDepth := tl1.Depth
	pairTL := forest.Node{Index: tl1.Index, Index2: tl2.Index, Depth: childDepth}
	pairTR := forest.Node{Index: tr1.Index, Index2: tr2.Index, Depth: childDepth}
	pairBL := forest.Node{Index: bl1.Index, Index2: bl2.Index, Depth: childDepth}
	pairBR := forest.Node{Index: br1.Index, Index2: br2.Index, Depth: childDepth}

	rtl := StreamingRecurse(f, cache, pairTL, m, e)
	rtr := StreamingRecurse(f, cache, pairTR, m, e)
	rbl := StreamingRecurse(f, cache, pairBL, m, e)
	rbr := StreamingRecurse(f, cache, pairBR, m, e)

	resultDepth := n.Depth - 1
	idx := f.MakeNonLeaf(resultDepth, forest.Quad{rtl.Index, rtr.Index, rbl.Index, rbr.Index})
	idx2 := f.MakeNonLeaf(resultDepth, forest.Quad{rtl.Index2, rtr.Index2, rbl.Index2, rbr.Index2})
	return forest.Node{Index: idx, Index2: idx2, Depth: resultDepth}
}

// projectPair projects both sublayers of a dual-layer pair to their
// centered child without advancing (the one-stage inner step).
func projectPair(f *forest.Forest, n forest.Node) forest.Node {
	a := forest.Node{Index: n.Index, Depth: n.Depth}
	b := forest.Node{Index: n.Index2, Depth: n.Depth}
	pa := hashlife.Project(f, a)
	pb := hashlife.Project(f, b)
	return forest.Node{Index: pa.Index, Index2: pb.Index, Depth: pa.Depth}
}
