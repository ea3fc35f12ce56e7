// Package macrocell implements the ASCII macrocell format described in
// spec §4.8/§6: a line-oriented, LF-terminated serialization of a
// rooted quadtree subtree, shared with the wider HashLife ecosystem.
package macrocell

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hashlife/internal/forest"
	"hashlife/internal/hashlife"
)

// Header is the magic first line written by Write and expected (but
// not required — comment lines are tolerated anywhere) by Read.
const Header = "[M2] (lifelib ll1.65)"

// entry is one parsed line's payload: either an 8x8 subleaf value or a
// forest node, addressed by its 1-based line number. Line 0 is the
// implicit, never-stored "empty" sentinel shared by both kinds.
type entry struct {
	subleaf    uint64
	hasSubleaf bool
	node       forest.Node
	hasNode    bool
}

// Writer serializes rooted subtrees to the macrocell format, reusing
// line numbers for any node or subleaf content already emitted in this
// writer's lifetime — the same canonicalization the forest itself
// gives the in-memory DAG.
type Writer struct {
	f *forest.Forest

	buf     strings.Builder
	lineNo  int
	subleaf map[uint64]int
	leaf    map[forest.NodeIndex]int
	nonleaf map[nonleafKey]int
}

type nonleafKey struct {
	depth forest.Depth
	idx   forest.NodeIndex
}

// NewWriter constructs a writer over f, emitting the standard header.
func NewWriter(f *forest.Forest) *Writer {
	w := &Writer{
		f:       f,
		subleaf: make(map[uint64]int),
		leaf:    make(map[forest.NodeIndex]int),
		nonleaf: make(map[nonleafKey]int),
	}
	w.buf.WriteString(Header)
	w.buf.WriteByte('\n')
	return w
}

// Write appends the subtree rooted at n, breaching dual-layer inputs
// first, and returns the accumulated file contents so far.
func (w *Writer) Write(n forest.Node) string {
	single := hashlife.Breach(w.f, n)
	w.emitNode(single)
	return w.buf.String()
}

// String returns the accumulated file contents.
func (w *Writer) String() string { return w.buf.String() }

func (w *Writer) emitNode(n forest.Node) int {
	if n.Index == 0 {
		return 0
	}
	if n.Depth == 0 {
		return w.emitLeaf(n.Index)
	}
	return w.emitNonLeaf(n.Depth, n.Index)
}

func (w *Writer) emitLeaf(idx forest.NodeIndex) int {
	if ln, ok := w.leaf[idx]; ok {
		return ln
	}
	bm := w.f.LeafBitmap(idx)
	a := w.emitSubleaf(bm[forest.TL])
	b := w.emitSubleaf(bm[forest.TR])
	c := w.emitSubleaf(bm[forest.BL])
	d := w.emitSubleaf(bm[forest.BR])

	w.lineNo++
	fmt.Fprintf(&w.buf, "4 %d %d %d %d\n", a, b, c, d)
	w.leaf[idx] = w.lineNo
	return w.lineNo
}

func (w *Writer) emitNonLeaf(depth forest.Depth, idx forest.NodeIndex) int {
	key := nonleafKey{depth, idx}
	if ln, ok := w.nonleaf[key]; ok {
		return ln
	}
	q := w.f.NonLeafChildren(depth, idx)
	a := w.emitNode(forest.Node{Index: q[forest.TL], Depth: depth - 1})
	b := w.emitNode(forest.Node{Index: q[forest.TR], Depth: depth - 1})
	c := w.emitNode(forest.Node{Index: q[forest.BL], Depth: depth - 1})
	d := w.emitNode(forest.Node{Index: q[forest.BR], Depth: depth - 1})

	w.lineNo++
	fmt.Fprintf(&w.buf, "%d %d %d %d %d\n", int(depth)+4, a, b, c, d)
	w.nonleaf[key] = w.lineNo
	return w.lineNo
}

// emitSubleaf writes the 8x8 dot/star pattern line for an 8x8 word
// value (the four words of a Bitmap), reusing a prior line if the same
// 64-bit pattern was already emitted.
func (w *Writer) emitSubleaf(word uint64) int {
	if word == 0 {
		return 0
	}
	if ln, ok := w.subleaf[word]; ok {
		return ln
	}
	var line strings.Builder
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if word&(1<<uint(x+8*y)) != 0 {
				line.WriteByte('*')
			} else {
				line.WriteByte('.')
			}
		}
		line.WriteByte('$')
	}
	w.lineNo++
	w.buf.WriteString(line.String())
	w.buf.WriteByte('\n')
	w.subleaf[word] = w.lineNo
	return w.lineNo
}

// Reader parses the macrocell format into forest nodes, logging and
// skipping malformed lines per spec §7's ParseError policy rather than
// aborting the whole read.
type Reader struct {
	f   *forest.Forest
	log *zap.SugaredLogger

	lines    []entry
	lastNode forest.Node
	sawNode  bool
}

// NewReader constructs a reader over f. A nil logger falls back to a
// no-op logger so callers that do not care about parse warnings need
// not construct one.
func NewReader(f *forest.Forest, log *zap.SugaredLogger) *Reader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reader{f: f, log: log, lines: []entry{{}}}
}

// Read parses the full macrocell document and returns its root: the
// last successfully parsed node line (spec §4.8: "the root is the last
// node created").
func (r *Reader) Read(data string) (forest.Node, error) {
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if err := r.parseLine(line); err != nil {
			r.log.Warnw("macrocell: skipping malformed line", "line", lineNum, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return forest.Node{}, fmt.Errorf("macrocell: scanning input: %w", err)
	}
	if !r.sawNode {
		return forest.Node{}, nil
	}
	return r.lastNode, nil
}

func (r *Reader) parseLine(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
		return nil
	}
	if isSubleafLine(trimmed) {
		r.lines = append(r.lines, entry{subleaf: parseSubleaf(trimmed), hasSubleaf: true})
		return nil
	}
	return r.parseNodeLine(trimmed)
}

func isSubleafLine(s string) bool {
	for _, c := range s {
		if c != '.' && c != '*' && c != '$' {
			return false
		}
	}
	return true
}

func parseSubleaf(s string) uint64 {
	var val uint64
	x, y := 0, 0
	for _, c := range s {
		switch c {
		case '*':
			if x < 8 && y < 8 {
				val |= 1 << uint(x+8*y)
			}
			x++
		case '.':
			x++
		case '$':
			y++
			x = 0
		}
	}
	return val
}

func (r *Reader) parseNodeLine(s string) error {
	fields := strings.Fields(s)
	if len(fields) != 5 {
		return fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	nums := make([]int, 5)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		nums[i] = n
	}
	k, a, b, c, d := nums[0], nums[1], nums[2], nums[3], nums[4]

	if k == 4 {
		bm := forest.Bitmap{
			r.subleafAt(a), r.subleafAt(b), r.subleafAt(c), r.subleafAt(d),
		}
		idx := r.f.MakeLeaf(bm)
		r.pushNode(forest.Node{Index: idx, Depth: 0})
		return nil
	}
	if k >= 5 {
		depth := forest.Depth(k - 4)
		q := forest.Quad{
			r.nodeIndexAt(a), r.nodeIndexAt(b), r.nodeIndexAt(c), r.nodeIndexAt(d),
		}
		idx := r.f.MakeNonLeaf(depth, q)
		r.pushNode(forest.Node{Index: idx, Depth: depth})
		return nil
	}
	return fmt.Errorf("unsupported node kind k=%d (small-tile k<4 assembly is out of scope)", k)
}

func (r *Reader) pushNode(n forest.Node) {
	r.lines = append(r.lines, entry{node: n, hasNode: true})
	r.lastNode = n
	r.sawNode = true
}

func (r *Reader) subleafAt(lineNo int) uint64 {
	if lineNo <= 0 || lineNo >= len(r.lines) {
		return 0
	}
	return r.lines[lineNo].subleaf
}

func (r *Reader) nodeIndexAt(lineNo int) forest.NodeIndex {
	if lineNo <= 0 || lineNo >= len(r.lines) {
		return 0
	}
	return r.lines[lineNo].node.Index
}
