package hashlife

import (
	"testing"

	"hashlife/internal/forest"
	"hashlife/pkg/core"
)

// centeredSoup places a random density-p soup in the central half of a
// side*side grid, leaving a quarter-size empty margin on every edge so
// that one generation of unbounded growth can never reach the true
// boundary — keeping NaiveStep's dead-outside-the-grid truncation
// indistinguishable from HashLife's infinite empty surroundings.
func centeredSoup(seed int64, side int, density float64) []uint8 {
	rng := core.NewRNG(seed)
	quarter := side / 4
	inner := rng.Soup(side/2, density)
	cells := make([]uint8, side*side)
	for y := 0; y < side/2; y++ {
		for x := 0; x < side/2; x++ {
			cells[(quarter+y)*side+(quarter+x)] = inner[y*side/2+x]
		}
	}
	return cells
}

func TestRecurseMatchesNaiveReferenceOnRandomSoup(t *testing.T) {
	const side = 64 // depth-2 node
	for seed := int64(1); seed <= 5; seed++ {
		cells := centeredSoup(seed, side, 0.3)

		f := forest.New(forest.DefaultConfig())
		node := CellsToNode(f, cells, side, 2)
		advanced := Recurse(f, node, 1, 0)
		got := NodeToCells(f, advanced)

		nextFull := NaiveStep(cells, side, side)
		quarter := side / 4
		want := make([]uint8, (side/2)*(side/2))
		for y := 0; y < side/2; y++ {
			for x := 0; x < side/2; x++ {
				want[y*(side/2)+x] = nextFull[(quarter+y)*side+(quarter+x)]
			}
		}

		if len(got) != len(want) {
			t.Fatalf("seed %d: size mismatch got=%d want=%d", seed, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("seed %d: cell %d mismatch: got=%d want=%d", seed, i, got[i], want[i])
			}
		}
	}
}

func TestCellsNodeRoundTrip(t *testing.T) {
	f := forest.New(forest.DefaultConfig())
	cells := centeredSoup(42, 32, 0.25)
	n := CellsToNode(f, cells, 32, 1)
	got := NodeToCells(f, n)
	for i := range cells {
		if got[i] != cells[i] {
			t.Fatalf("round trip mismatch at cell %d: got=%d want=%d", i, got[i], cells[i])
		}
	}
}
