// Package pipeline orchestrates one conversion run: normalize the raw tide
// and rainfall files, aggregate them into neighborhood days, score each
// day, and write the canonical table.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/recifesafe/floodrisk-etl/internal/aggregate"
	"github.com/recifesafe/floodrisk-etl/internal/domain"
	"github.com/recifesafe/floodrisk-etl/internal/normalize"
	"github.com/recifesafe/floodrisk-etl/internal/observability"
	"github.com/recifesafe/floodrisk-etl/internal/refdata"
	"github.com/recifesafe/floodrisk-etl/internal/risk"
	"github.com/recifesafe/floodrisk-etl/internal/table"
)

// Store persists converted rows for the query API. Optional.
type Store interface {
	UpsertDays(ctx context.Context, days []domain.NeighborhoodDay) error
}

// Inputs names the files for one conversion run. OccurrencesPath and
// OutPath may be empty; an empty OutPath skips the CSV output.
type Inputs struct {
	TidePath        string
	RainPath        string
	OccurrencesPath string
	OutPath         string
}

// Summary reports what a conversion run did.
type Summary struct {
	TideRowsRead    int
	TideRowsSkipped int
	RainRowsRead    int
	RainRowsSkipped int
	DaysWritten     int
	HighRiskDays    int
	Duration        time.Duration
}

// Converter runs the normalize-aggregate-score-write sequence.
type Converter struct {
	refs    *refdata.Table
	scorer  *risk.Scorer
	opts    aggregate.Options
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Converter. store may be nil when no database is configured.
func New(refs *refdata.Table, scorer *risk.Scorer, opts aggregate.Options, store Store, logger *slog.Logger, metrics *observability.Metrics) *Converter {
	return &Converter{
		refs:    refs,
		scorer:  scorer,
		opts:    opts,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Convert runs one conversion. On error nothing is written: the output
// file and the store keep their previous contents.
func (c *Converter) Convert(ctx context.Context, in Inputs) (Summary, error) {
	start := time.Now()
	c.metrics.PipelineRuns.Inc()

	summary := Summary{}
	fail := func(err error) (Summary, error) {
		c.metrics.RunErrors.Inc()
		return summary, err
	}

	tide, tideStats, err := c.readSource(in.TidePath, normalize.SourceTide)
	if err != nil {
		return fail(err)
	}
	summary.TideRowsRead = tideStats.RowsRead
	summary.TideRowsSkipped = tideStats.RowsSkipped

	rain, rainStats, err := c.readSource(in.RainPath, normalize.SourceRainfall)
	if err != nil {
		return fail(err)
	}
	summary.RainRowsRead = rainStats.RowsRead
	summary.RainRowsSkipped = rainStats.RowsSkipped

	var occurrences map[aggregate.DayKey]int
	if in.OccurrencesPath != "" {
		if occurrences, err = aggregate.LoadOccurrencesCSV(in.OccurrencesPath); err != nil {
			return fail(fmt.Errorf("load occurrences: %w", err))
		}
	}

	days, err := aggregate.Build(rain, tide, c.refs, occurrences, c.opts)
	if err != nil {
		return fail(err)
	}

	for i := range days {
		score, err := c.scorer.Score(days[i])
		if err != nil {
			return fail(fmt.Errorf("score %s %s: %w", days[i].NeighborhoodID,
				days[i].Date.Format("2006-01-02"), err))
		}
		days[i].RiskScore = score
		if c.scorer.Band(score) == "high" {
			summary.HighRiskDays++
		}
	}

	if in.OutPath != "" {
		if err := table.Write(in.OutPath, days); err != nil {
			return fail(fmt.Errorf("write table: %w", err))
		}
	}
	if c.store != nil {
		if err := c.store.UpsertDays(ctx, days); err != nil {
			return fail(fmt.Errorf("store days: %w", err))
		}
	}

	summary.DaysWritten = len(days)
	summary.Duration = time.Since(start)

	c.metrics.RowsWritten.Add(float64(len(days)))
	c.metrics.HighRiskDays.Set(float64(summary.HighRiskDays))
	c.metrics.RunDuration.Observe(summary.Duration.Seconds())
	c.metrics.LastRunTime.Set(float64(domain.Now().Unix()))

	c.logger.Info("conversion complete",
		"days_written", summary.DaysWritten,
		"high_risk_days", summary.HighRiskDays,
		"tide_rows", summary.TideRowsRead,
		"tide_skipped", summary.TideRowsSkipped,
		"rain_rows", summary.RainRowsRead,
		"rain_skipped", summary.RainRowsSkipped,
		"duration", summary.Duration)

	return summary, nil
}

// readSource normalizes one raw file, recording row metrics per source.
func (c *Converter) readSource(path string, kind normalize.SourceKind) ([]domain.Reading, normalize.Stats, error) {
	start := time.Now()

	r, err := normalize.Open(path, kind, c.logger)
	if err != nil {
		return nil, normalize.Stats{}, fmt.Errorf("open %s file: %w", kind, err)
	}
	defer r.Close()

	readings, err := r.ReadAll()
	stats := r.Stats()
	label := string(kind)
	c.metrics.RowsRead.WithLabelValues(label).Add(float64(stats.RowsRead))
	c.metrics.RowsSkipped.WithLabelValues(label).Add(float64(stats.RowsSkipped))
	c.metrics.FileDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, stats, fmt.Errorf("read %s file: %w", kind, err)
	}

	c.logger.Info("source normalized",
		"source", label,
		"variant", r.Variant(),
		"rows_read", stats.RowsRead,
		"rows_skipped", stats.RowsSkipped,
		"readings", stats.Readings)
	return readings, stats, nil
}
