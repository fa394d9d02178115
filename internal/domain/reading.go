package domain

import "time"

// Metric identifies the measurement kind carried by a Reading.
type Metric string

const (
	// MetricRainfallMM is daily accumulated precipitation in millimeters.
	MetricRainfallMM Metric = "rainfall_mm"
	// MetricTideM is tide height in meters.
	MetricTideM Metric = "tide_m"
)

// RawReading is a single source record as it appears in a file, before any
// normalization. It is ephemeral: produced by the file parsers and consumed
// immediately by the normalizer.
type RawReading struct {
	StationID string
	Timestamp string // as written in the source, format varies per variant
	Value     string // may use a decimal comma or a missing-value sentinel
	Unit      string // "mm", "in", "m", "cm", or empty for the source default
}

// Reading is a normalized measurement: one station, one UTC calendar day,
// one metric. Rainfall values are non-negative millimeters; tide values are
// meters and may be negative (below datum).
type Reading struct {
	StationID string
	Date      time.Time // midnight UTC
	Metric    Metric
	Value     float64
}

// NeighborhoodDay is the atomic unit of the aggregated dataset: one
// neighborhood's conditions for one calendar day. Rows are immutable once
// the risk score has been attached; (NeighborhoodID, Date) is the natural
// key and is unique after aggregation.
type NeighborhoodDay struct {
	NeighborhoodID string
	Date           time.Time // midnight UTC
	RainfallMM     float64
	TideM          float64
	Vulnerability  float64 // static susceptibility score in [0, 1]
	Occurrences    int     // recorded (or synthesized) flood/landslide events
	RiskScore      float64 // composite score in [0, 1]
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
