// Command convert runs one conversion: it normalizes raw tide and rainfall
// CSV files, aggregates them into neighborhood days, scores each day, and
// writes the canonical risk table. Optionally it persists the rows to a
// SQLite database and trains the baseline models on the result.
//
// Usage:
//
//	go run ./cmd/convert \
//	  -tide data/mares_2024.csv \
//	  -rain data/chuvas_apac_2024.csv \
//	  -out out/neighborhood_days.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/recifesafe/floodrisk-etl/internal/aggregate"
	"github.com/recifesafe/floodrisk-etl/internal/config"
	"github.com/recifesafe/floodrisk-etl/internal/observability"
	"github.com/recifesafe/floodrisk-etl/internal/pipeline"
	"github.com/recifesafe/floodrisk-etl/internal/refdata"
	"github.com/recifesafe/floodrisk-etl/internal/risk"
	"github.com/recifesafe/floodrisk-etl/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "convert:", err)
		os.Exit(1)
	}
}

func run() error {
	tidePath := flag.String("tide", "", "tide CSV file (almanac or long format, .gz supported)")
	rainPath := flag.String("rain", "", "rainfall CSV file (station matrix or long format, .gz supported)")
	outPath := flag.String("out", "", "output CSV path for the neighborhood-day table")
	occPath := flag.String("occurrences", "", "optional occurrence counts CSV")
	dbPath := flag.String("db", "", "optional SQLite database to upsert rows into")
	seed := flag.Int64("seed", 42, "seed for occurrence synthesis")
	synthesize := flag.Bool("synthesize-occurrences", true, "synthesize occurrence counts when no file is given")
	forwardFill := flag.Bool("forward-fill", false, "carry the last observed value over gaps before the default fill")
	interpolate := flag.Bool("interpolate", false, "linearly interpolate interior gaps before the default fill")
	train := flag.Bool("train", false, "train baseline models on the converted rows and print coefficients")
	check := flag.Bool("check", false, "re-read the output table after conversion and verify its integrity")
	flag.Parse()

	if *tidePath == "" || *rainPath == "" || *outPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -tide, -rain, -out")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	refs, err := refdata.Load(cfg.NeighborhoodsPath, cfg.StationsPath)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	scorer, err := risk.NewScorer(cfg.RiskConfig())
	if err != nil {
		return err
	}

	var st *store.Store
	if *dbPath != "" {
		if st, err = store.Open(*dbPath); err != nil {
			return err
		}
		defer st.Close()
	}

	opts := aggregate.Options{
		ForwardFill:           *forwardFill,
		Interpolate:           *interpolate,
		SynthesizeOccurrences: *synthesize && *occPath == "",
		Seed:                  *seed,
	}

	var pipelineStore pipeline.Store
	if st != nil {
		pipelineStore = st
	}
	converter := pipeline.New(refs, scorer, opts, pipelineStore, logger, metrics)

	ctx := context.Background()
	summary, err := converter.Convert(ctx, pipeline.Inputs{
		TidePath:        *tidePath,
		RainPath:        *rainPath,
		OccurrencesPath: *occPath,
		OutPath:         *outPath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d neighborhood days to %s (%d high risk, %d source rows skipped)\n",
		summary.DaysWritten, *outPath,
		summary.HighRiskDays, summary.TideRowsSkipped+summary.RainRowsSkipped)

	if *check {
		if err := checkOutput(*outPath, summary.DaysWritten); err != nil {
			return err
		}
		fmt.Println("output table verified")
	}

	if *train {
		return trainModels(*outPath, logger)
	}
	return nil
}
