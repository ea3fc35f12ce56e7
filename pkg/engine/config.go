// Package engine is the external interface described in spec §6: a
// handle-based, capability-dispatched wrapper over the internal
// forest/hashlife/lanes machinery, with no environment variables, no
// command-line parsing of its own, and no persisted state in-core.
package engine

import "flag"

// Config holds the engine's external settings: the resident-size
// threshold in MiB above which Advance requests a threshold GC (see
// forest.Config for when that pass actually collects), and whether the
// streaming engine is used.
type Config struct {
	MaxMemoryMiB int64
	Streaming    bool
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{MaxMemoryMiB: 512, Streaming: false}
}

// Bind attaches the configuration to the provided FlagSet, following
// the same Config/Bind convention used throughout this codebase.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Int64Var(&c.MaxMemoryMiB, "max-memory-mib", c.MaxMemoryMiB, "forest size in MiB above which Advance requests a threshold GC")
	fs.BoolVar(&c.Streaming, "streaming", c.Streaming, "enable the streaming (dual-layer lane) engine")
}

// maxMemoryBytes converts the configured ceiling to the forest's
// native unit (MiB * 2^20, per spec §6).
func (c *Config) maxMemoryBytes() int64 {
	return c.MaxMemoryMiB << 20
}
