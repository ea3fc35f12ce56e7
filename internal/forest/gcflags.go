package forest

// gcflags packs the per-entry cache-validity bookkeeping described in
// spec §3: low bits record which prime the population cache was last
// computed against, the next bits record the mantissa/exponent of the
// cached iterate_recurse result, and the high bits record that
// exponent's value. Bit offsets never escape this file — every other
// package goes through the accessor methods below (Design Notes: "do
// not expose raw bit offsets outside the forest").
type gcflags uint64

const (
	popFingerprintMask = uint64(0x1ff) // bits 0..8
	popFingerprintBits = 9

	mantissaShift = 9
	mantissaMask  = uint64(0x7) // bits 9..11, m-1 in 0..7

	reservedShift = 12
	reservedMask  = uint64(0xf) // bits 12..15, always zero

	exponentShift = 16 // bits 16..63, encoded exponent e+1
)

// popDepthTier is the depth at which the population cache switches from
// a plain validity bit to a modulus-fingerprint comparison (spec §3).
const popDepthTier = Depth(11)

// popValid reports whether the cached population aux value is usable
// for a cache at the given depth against the given prime modulus.
func (f gcflags) popValid(depth Depth, modPrime uint64) bool {
	if depth <= popDepthTier {
		return f&1 != 0
	}
	return uint64(f)&popFingerprintMask == modPrime&popFingerprintMask
}

// withPopValid returns f with the population-validity bits set to
// reflect a fresh computation against modPrime at the given depth.
func (f gcflags) withPopValid(depth Depth, modPrime uint64) gcflags {
	cleared := uint64(f) &^ popFingerprintMask
	if depth <= popDepthTier {
		return gcflags(cleared | 1)
	}
	return gcflags(cleared | (modPrime & popFingerprintMask))
}

// withPopInvalid clears the population-validity bits.
func (f gcflags) withPopInvalid() gcflags {
	return gcflags(uint64(f) &^ popFingerprintMask)
}

// mantissa returns the cached result's mantissa m in 1..8, or 0 if no
// iterate_recurse result is cached.
func (f gcflags) mantissa() uint8 {
	if f.exponentPlusOne() == 0 {
		return 0
	}
	return uint8((uint64(f)>>mantissaShift)&mantissaMask) + 1
}

// exponentPlusOne returns the cached result's encoded exponent (e+1),
// or 0 if nothing is cached.
func (f gcflags) exponentPlusOne() uint64 {
	return uint64(f) >> exponentShift
}

// withRes returns f updated to record a fresh iterate_recurse cache
// entry for mantissa m (1..8) and exponent e (>=0).
func (f gcflags) withRes(m uint8, e uint64) gcflags {
	cleared := uint64(f) &^ (mantissaMask << mantissaShift) &^ (reservedMask << reservedShift)
	allOnes := ^uint64(0)
	cleared &^= allOnes << exponentShift
	cleared |= (uint64(m-1) & mantissaMask) << mantissaShift
	cleared |= (e + 1) << exponentShift
	return gcflags(cleared)
}

// withResInvalid clears any cached iterate_recurse result, leaving the
// population-validity bits untouched.
func (f gcflags) withResInvalid() gcflags {
	allOnes := ^uint64(0)
	return gcflags(uint64(f) &^ (allOnes << exponentShift))
}

// bothStageThreshold reports whether a query (m, e) at the given child
// depth falls in the "both stages" regime (spec §4.4: d <= e+1, where
// d = childDepth+1 is the depth of the node being advanced).
func bothStageThreshold(e uint64, childDepth Depth) bool {
	return e+1 >= uint64(childDepth)+1
}

// resHit reports whether the cached result in f is a valid hit for a
// query (m, e) whose result lives at childDepth (node.Depth - 1).
func (f gcflags) resHit(m uint8, e uint64, childDepth Depth) bool {
	cachedExp1 := f.exponentPlusOne()
	if cachedExp1 == 0 {
		return false
	}
	if f.mantissa() != m {
		return false
	}
	if cachedExp1 == e+1 {
		return true
	}
	cachedBothStage := bothStageThreshold(cachedExp1-1, childDepth)
	queryBothStage := bothStageThreshold(e, childDepth)
	return cachedBothStage && queryBothStage
}

// ResHit reports whether v's cached iterate_recurse result is a valid
// hit for a query (m, e) whose result lives at childDepth. Exported so
// the hashlife package can consult the cache without this file's bit
// offsets leaking outside the forest package (Design Notes).
func (v *NonLeafValue) ResHit(m uint8, e uint64, childDepth Depth) bool {
	return v.flags.resHit(m, e, childDepth)
}

// RecordRes stores a fresh iterate_recurse result for (m, e).
func (v *NonLeafValue) RecordRes(resIdx NodeIndex, m uint8, e uint64) {
	v.flags = v.flags.withRes(m, e)
	v.Res = resIdx
}

// PopValid reports whether v's cached population aux value is usable
// against modPrime at the given depth.
func (v *NonLeafValue) PopValid(depth Depth, modPrime uint64) bool {
	return v.flags.popValid(depth, modPrime)
}

// RecordPop stores a fresh population-mod-prime computation.
func (v *NonLeafValue) RecordPop(depth Depth, modPrime, value uint64) {
	v.flags = v.flags.withPopValid(depth, modPrime)
	v.PopValue = value
}
