package hashlife

import "hashlife/internal/forest"

// Population returns the live-cell count of n reduced modulo modPrime,
// consulting and refreshing the per-entry population cache described in
// spec §3/§4.4. modPrime should be an odd prime so cache fingerprints
// (for depths beyond popDepthTier) collide rarely across distinct
// rolling moduli.
func Population(f *forest.Forest, n forest.Node, modPrime uint64) uint64 {
	if n.IsEmpty() {
		return 0
	}
	if n.Depth == 0 {
		return leafPopulation(f, n, modPrime)
	}
	return nonLeafPopulation(f, n, modPrime)
}

func leafPopulation(f *forest.Forest, n forest.Node, modPrime uint64) uint64 {
	v := f.LeafValuePtr(n.Index)
	if v != nil && v.PopValid && v.PopPrime == modPrime {
		return v.PopValue
	}
	bm := f.LeafBitmap(n.Index)
	count := popcountBitmap(bm) % modPrime
	if v != nil {
		v.PopValid = true
		v.PopPrime = modPrime
		v.PopValue = count
	}
	return count
}

// exactPopDepth matches the forest's population tier: up to this depth
// the cache's validity bit does not record the modulus, so the cached
// value is the exact count, reduced modulo modPrime only on return.
const exactPopDepth = forest.Depth(11)

func nonLeafPopulation(f *forest.Forest, n forest.Node, modPrime uint64) uint64 {
	v := f.NonLeafValuePtr(n.Depth, n.Index)
	if v != nil && v.PopValid(n.Depth, modPrime) {
		return v.PopValue % modPrime
	}
	sumMod := modPrime
	if n.Depth <= exactPopDepth {
		sumMod = ^uint64(0)
	}
	var total uint64
	for _, q := range [4]int{forest.TL, forest.TR, forest.BL, forest.BR} {
		child := f.GetChild(n, q)
		total += Population(f, child, sumMod)
	}
	total %= sumMod
	if v != nil {
		v.RecordPop(n.Depth, modPrime, total)
	}
	return total % modPrime
}

func popcountBitmap(bm forest.Bitmap) uint64 {
	var total uint64
	for _, w := range bm {
		total += uint64(popcount64(w))
	}
	return total
}

func popcount64(x uint64) int {
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}
