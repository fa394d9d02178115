// Package aggregate joins normalized tide and rainfall readings into one row
// per (neighborhood, day), applying the configured gap policy and attaching
// static neighborhood attributes.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
	"github.com/recifesafe/floodrisk-etl/internal/refdata"
)

// Options control gap handling and occurrence synthesis. The zero value is
// the production default: zero-fill rainfall, mean-fill tide, no synthesis.
type Options struct {
	// ForwardFill carries the last observed value over gaps before the
	// default fill applies.
	ForwardFill bool
	// Interpolate fills interior gaps linearly between the surrounding
	// observations before the default fill applies. Takes precedence over
	// ForwardFill when both are set.
	Interpolate bool
	// SynthesizeOccurrences generates occurrence counts from a seeded
	// probabilistic model for rows absent from the historical table.
	SynthesizeOccurrences bool
	// Seed drives occurrence synthesis only; scoring never uses it.
	Seed int64
}

// DayKey identifies one (neighborhood, day) cell.
type DayKey struct {
	NeighborhoodID string
	Date           time.Time
}

// Build produces the aggregated table: one row per (neighborhood, day) for
// every configured neighborhood across the full date range present in the
// inputs, sorted by (neighborhood_id, date) ascending. Re-running Build on
// identical inputs and options yields identical output.
func Build(rain, tide []domain.Reading, refs *refdata.Table, occurrences map[DayKey]int, opts Options) ([]domain.NeighborhoodDay, error) {
	dates := collectDates(rain, tide)
	if len(dates) == 0 {
		return nil, nil
	}

	rainByNbhd, err := rainfallByNeighborhood(rain, refs)
	if err != nil {
		return nil, err
	}
	tideSeries, tideMean := tideByDay(tide)

	fillSeries(tideSeries, dates, opts)
	for _, series := range rainByNbhd {
		fillSeries(series, dates, opts)
	}

	ids := refs.IDs()
	out := make([]domain.NeighborhoodDay, 0, len(ids)*len(dates))
	synth := newOccurrenceModel(opts.Seed)

	for _, id := range ids {
		nbhd, err := refs.Neighborhood(id)
		if err != nil {
			return nil, err
		}
		rainSeries := rainByNbhd[id]

		for _, date := range dates {
			day := domain.NeighborhoodDay{
				NeighborhoodID: id,
				Date:           date,
				RainfallMM:     round2(valueOrZero(rainSeries, date)),
				TideM:          round3(valueOr(tideSeries, date, tideMean)),
				Vulnerability:  round3(nbhd.Vulnerability),
			}

			if n, ok := occurrences[DayKey{NeighborhoodID: id, Date: date}]; ok {
				day.Occurrences = n
			} else if opts.SynthesizeOccurrences {
				day.Occurrences = synth.sample(nbhd, day.RainfallMM, day.TideM)
			}

			out = append(out, day)
		}
	}
	return out, nil
}

// collectDates returns the sorted union of dates observed in both inputs.
func collectDates(rain, tide []domain.Reading) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, r := range rain {
		seen[r.Date] = struct{}{}
	}
	for _, r := range tide {
		seen[r.Date] = struct{}{}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// rainfallByNeighborhood maps station readings onto neighborhoods, averaging
// when several stations report for the same neighborhood and day. An
// unmapped station is a configuration error.
func rainfallByNeighborhood(rain []domain.Reading, refs *refdata.Table) (map[string]map[time.Time]float64, error) {
	type cell struct {
		sum float64
		n   int
	}
	acc := make(map[string]map[time.Time]*cell)

	for _, r := range rain {
		nbhd, err := refs.NeighborhoodForStation(r.StationID)
		if err != nil {
			return nil, err
		}
		days := acc[nbhd.ID]
		if days == nil {
			days = make(map[time.Time]*cell)
			acc[nbhd.ID] = days
		}
		c := days[r.Date]
		if c == nil {
			c = &cell{}
			days[r.Date] = c
		}
		c.sum += r.Value
		c.n++
	}

	out := make(map[string]map[time.Time]float64, len(acc))
	for id, days := range acc {
		series := make(map[time.Time]float64, len(days))
		for date, c := range days {
			series[date] = c.sum / float64(c.n)
		}
		out[id] = series
	}
	return out, nil
}

// tideByDay averages tide readings per day across stations (the tide is
// city-wide) and returns the mean of the observed series for gap filling.
func tideByDay(tide []domain.Reading) (map[time.Time]float64, float64) {
	type cell struct {
		sum float64
		n   int
	}
	acc := make(map[time.Time]*cell)
	for _, r := range tide {
		c := acc[r.Date]
		if c == nil {
			c = &cell{}
			acc[r.Date] = c
		}
		c.sum += r.Value
		c.n++
	}

	out := make(map[time.Time]float64, len(acc))
	var total float64
	for date, c := range acc {
		v := c.sum / float64(c.n)
		out[date] = v
		total += v
	}
	mean := 0.0
	if len(out) > 0 {
		mean = total / float64(len(out))
	}
	return out, mean
}

// fillSeries applies the optional gap strategies in place over the full date
// range. The caller's default fill (zero or mean) covers whatever remains.
func fillSeries(series map[time.Time]float64, dates []time.Time, opts Options) {
	if series == nil || (!opts.ForwardFill && !opts.Interpolate) {
		return
	}

	if opts.Interpolate {
		interpolateSeries(series, dates)
		return
	}

	// Forward fill.
	var last float64
	var have bool
	for _, d := range dates {
		if v, ok := series[d]; ok {
			last, have = v, true
			continue
		}
		if have {
			series[d] = last
		}
	}
}

// interpolateSeries fills interior gaps linearly between the nearest
// observations on either side. Leading and trailing gaps are left for the
// default fill.
func interpolateSeries(series map[time.Time]float64, dates []time.Time) {
	prev := -1
	for i, d := range dates {
		if _, ok := series[d]; !ok {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := series[dates[prev]], series[d]
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				series[dates[j]] = lo + (hi-lo)*float64(j-prev)/span
			}
		}
		prev = i
	}
}

func valueOrZero(series map[time.Time]float64, date time.Time) float64 {
	return valueOr(series, date, 0)
}

func valueOr(series map[time.Time]float64, date time.Time, fallback float64) float64 {
	if series == nil {
		return fallback
	}
	if v, ok := series[date]; ok {
		return v
	}
	return fallback
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
