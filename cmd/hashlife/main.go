// Command hashlife is the CLI entry point for the engine: load or
// generate a pattern, advance it, inspect it, and optionally serve
// Prometheus metrics while doing so. It has no environment variables
// and no persisted state beyond the macrocell file the caller names.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"hashlife/internal/forest"
	hl "hashlife/internal/hashlife"
	"hashlife/internal/macrocell"
	"hashlife/pkg/core"
	"hashlife/pkg/engine"
)

func main() {
	app := &cli.App{
		Name:  "hashlife",
		Usage: "HashLife Conway's Life engine",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "max-memory-mib", Value: 512, Usage: "forest size in MiB above which a threshold GC is requested"},
			&cli.BoolFlag{Name: "streaming", Usage: "use the streaming (dual-layer lane) engine"},
			&cli.IntFlag{Name: "metrics-port", Value: 0, Usage: "serve Prometheus metrics on this port (0 disables)"},
		},
		Commands: []*cli.Command{
			soupCommand,
			advanceCommand,
			statsCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger() *zap.SugaredLogger {
	rawlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %+v", err)
	}
	return rawlog.Sugar()
}

func newTree(cctx *cli.Context) *engine.Tree {
	cfg := engine.NewConfig()
	cfg.MaxMemoryMiB = cctx.Int64("max-memory-mib")
	cfg.Streaming = cctx.Bool("streaming")
	return engine.NewTree(cfg)
}

func maybeServeMetrics(cctx *cli.Context, log *zap.SugaredLogger) {
	port := cctx.Int("metrics-port")
	if port == 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Infof("metrics server listening on port %d", port)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Errorf("metrics server exited: %+v", err)
		}
	}()
}

var soupCommand = &cli.Command{
	Name:  "soup",
	Usage: "generate a random soup and write it as a macrocell document",
	Flags: []cli.Flag{
		&cli.Int64Flag{Name: "seed", Value: 1, Usage: "RNG seed"},
		&cli.Float64Flag{Name: "density", Value: 0.3, Usage: "fraction of live cells, 0..1"},
		&cli.IntFlag{Name: "depth", Value: 2, Usage: "root node depth (side = 16<<depth)"},
		&cli.StringFlag{Name: "out", Usage: "output file (default stdout)"},
	},
	Action: func(cctx *cli.Context) error {
		log := newLogger()
		defer func() { _ = log.Sync() }()
		maybeServeMetrics(cctx, log)

		tr := newTree(cctx)
		side := 16 << uint(cctx.Int("depth"))
		rng := core.NewRNG(cctx.Int64("seed"))
		cells := rng.Soup(side, cctx.Float64("density"))

		f := tr.Forest()
		root := hl.CellsToNode(f, cells, side, forest.Depth(cctx.Int("depth")))

		w := macrocell.NewWriter(f)
		doc := w.Write(root)
		return writeOut(cctx.String("out"), doc)
	},
}

var advanceCommand = &cli.Command{
	Name:  "advance",
	Usage: "advance a macrocell pattern by 2^m generations and write the result",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "in", Required: true, Usage: "input macrocell file"},
		&cli.StringFlag{Name: "out", Usage: "output file (default stdout)"},
		&cli.UintFlag{Name: "m", Value: 1, Usage: "mantissa of the advance m*2^e (0..8)"},
		&cli.Uint64Flag{Name: "e", Value: 0, Usage: "time-safety exponent"},
	},
	Action: func(cctx *cli.Context) error {
		log := newLogger()
		defer func() { _ = log.Sync() }()
		maybeServeMetrics(cctx, log)

		data, err := os.ReadFile(cctx.String("in"))
		if err != nil {
			return fmt.Errorf("reading %s: %w", cctx.String("in"), err)
		}

		tr := newTree(cctx)
		r := macrocell.NewReader(tr.Forest(), log)
		root, err := r.Read(string(data))
		if err != nil {
			return fmt.Errorf("parsing macrocell input: %w", err)
		}

		advanced := tr.Advance(root, uint8(cctx.Uint("m")), cctx.Uint64("e"))

		w := macrocell.NewWriter(tr.Forest())
		doc := w.Write(advanced)
		return writeOut(cctx.String("out"), doc)
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "load a macrocell pattern and print its population and forest size",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "in", Required: true, Usage: "input macrocell file"},
		&cli.Uint64Flag{Name: "mod-prime", Value: 2147483647, Usage: "modulus for the population aggregate"},
	},
	Action: func(cctx *cli.Context) error {
		log := newLogger()
		defer func() { _ = log.Sync() }()
		maybeServeMetrics(cctx, log)

		data, err := os.ReadFile(cctx.String("in"))
		if err != nil {
			return fmt.Errorf("reading %s: %w", cctx.String("in"), err)
		}

		tr := newTree(cctx)
		r := macrocell.NewReader(tr.Forest(), log)
		root, err := r.Read(string(data))
		if err != nil {
			return fmt.Errorf("parsing macrocell input: %w", err)
		}

		pop := tr.Population(root, cctx.Uint64("mod-prime"))
		tr.Forest().ReportMetrics()
		fmt.Printf("depth=%d population_mod_%d=%d forest_bytes=%d\n",
			root.Depth, cctx.Uint64("mod-prime"), pop, tr.Forest().TotalBytes())
		return nil
	},
}

func writeOut(path, doc string) error {
	if path == "" {
		_, err := fmt.Print(doc)
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}
