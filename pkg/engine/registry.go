package engine

import "hashlife/internal/forest"

// Capability is the operation set exposed by an engine variant (spec
// Design Notes: "represent the engine as a capability with operations
// {iterate_recurse, threshold_gc} over a shared underlying forest").
// The plain capability dispatches straight to hashlife.Recurse; the
// streaming capability adds the bi-result cache and lane analysis.
type Capability interface {
	Advance(n forest.Node, m uint8, e uint64) forest.Node
	ThresholdGC() bool
}

// CapabilityFactory constructs a Capability bound to a shared forest.
type CapabilityFactory func(f *forest.Forest) Capability

var capabilities = map[string]CapabilityFactory{}

// RegisterCapability adds a capability factory under name, mirroring
// the simulation-registry pattern used for simulation factories
// elsewhere in this codebase.
func RegisterCapability(name string, factory CapabilityFactory) {
	if name == "" || factory == nil {
		return
	}
	capabilities[name] = factory
}

// Capabilities exposes the registry of available engine variants.
func Capabilities() map[string]CapabilityFactory {
	return capabilities
}

func init() {
	RegisterCapability("plain", newPlainCapability)
	RegisterCapability("streaming", newStreamingCapability)
}
