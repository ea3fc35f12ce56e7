package engine

import (
	"hashlife/internal/forest"
	"hashlife/internal/hashlife"
)

// Tree is the public handle-based wrapper around a forest and its
// capability (spec §6): the memory threshold, root lifecycle, and
// iterate_recurse/threshold_gc dispatch all live here. Lower-level
// forest access remains available through Forest.
type Tree struct {
	cfg *Config
	f   *forest.Forest
	cap Capability
}

// NewTree constructs a Tree with an empty forest. A nil cfg falls back
// to NewConfig's defaults.
func NewTree(cfg *Config) *Tree {
	if cfg == nil {
		cfg = NewConfig()
	}
	f := forest.New(forest.Config{MaxMemoryBytes: cfg.maxMemoryBytes()})

	name := "plain"
	if cfg.Streaming {
		name = "streaming"
	}
	factory, ok := capabilities[name]
	if !ok {
		panic("engine: no capability registered for " + name)
	}
	return &Tree{cfg: cfg, f: f, cap: factory(f)}
}

// Forest exposes the underlying forest for callers that need lower
// level access (macrocell I/O, population queries, boolean ops, lane
// analysis) without duplicating those operations on Tree.
func (t *Tree) Forest() *forest.Forest { return t.f }

// Advance runs iterate_recurse on n for m*2^e generations, first
// growing the pyramid by m levels so the recursion has the half-empty
// border it requires (spec §4.4-§4.5). If the grown node's depth is
// below e+1 the advance is m*2^(depth-1), as documented on
// hashlife.Recurse.
func (t *Tree) Advance(n forest.Node, m uint8, e uint64) forest.Node {
	grown := n
	for i := 0; i < int(m); i++ {
		grown = hashlife.PyramidUp(t.f, grown)
	}
	result := t.cap.Advance(grown, m, e)
	result = hashlife.PyramidDown(t.f, result)
	t.maybeThresholdGC()
	return result
}

// Population returns the live-cell count of n modulo modPrime (spec
// §4.3's modular population aggregate).
func (t *Tree) Population(n forest.Node, modPrime uint64) uint64 {
	return hashlife.Population(t.f, n, modPrime)
}

// Boolean applies a boolean composition to two same-depth nodes (spec
// §4.5).
func (t *Tree) Boolean(a, b forest.Node, op hashlife.BoolOp) forest.Node {
	return hashlife.BooleanRecurse(t.f, a, b, op)
}

// Breach collapses a dual-layer node into its single-layer union.
func (t *Tree) Breach(n forest.Node) forest.Node {
	return hashlife.Breach(t.f, n)
}

// ForceGC runs an unconditional full collection (spec §6's
// operator-invoked garbage_collect), emptying the streaming engine's
// bi-result cache along with it.
func (t *Tree) ForceGC() {
	t.f.GCFull(0)
	if s, ok := t.cap.(*streamingCapability); ok {
		s.cache.Clear()
	}
	t.f.ReportMetrics()
}

// ThresholdGC runs the capability's threshold-triggered collection,
// reporting whether a pass actually ran.
func (t *Tree) ThresholdGC() bool {
	ran := t.cap.ThresholdGC()
	if ran {
		t.f.ReportMetrics()
	}
	return ran
}

func (t *Tree) maybeThresholdGC() {
	if t.cfg.maxMemoryBytes() <= 0 {
		return
	}
	if t.f.TotalBytes() > t.cfg.maxMemoryBytes() {
		t.ThresholdGC()
	}
}

// plainCapability is the default engine variant: iterate_recurse goes
// straight to hashlife.Recurse with no lane analysis or extra caching
// beyond the per-node memoization already built into the forest.
type plainCapability struct {
	f *forest.Forest
}

func newPlainCapability(f *forest.Forest) Capability {
	return &plainCapability{f: f}
}

func (p *plainCapability) Advance(n forest.Node, m uint8, e uint64) forest.Node {
	return hashlife.Recurse(p.f, n, m, e)
}

func (p *plainCapability) ThresholdGC() bool {
	return p.f.GCPartial()
}
