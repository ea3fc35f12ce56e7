package engine

import "hashlife/internal/forest"

// NewHandle registers n as a protected root, returning an opaque
// non-zero id that must be passed to every later call naming this root
// (spec §6 handle lifecycle).
func (t *Tree) NewHandle(n forest.Node) forest.RootHandle {
	return t.f.NewHandle(n)
}

// DeleteHandle deregisters a root. An unknown handle is reported as an
// error rather than panicking, matching spec §7's InvalidHandle policy.
func (t *Tree) DeleteHandle(h forest.RootHandle) error {
	return t.f.DeleteHandle(h)
}

// Root resolves a handle to its registered node.
func (t *Tree) Root(h forest.RootHandle) (forest.Node, error) {
	return t.f.Root(h)
}

// Roots returns every currently registered (handle, node) pair.
func (t *Tree) Roots() map[forest.RootHandle]forest.Node {
	return t.f.Roots()
}
