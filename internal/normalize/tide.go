package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// TideAlmanacStation is the synthetic station id assigned to almanac rows;
// the almanac reports one city-wide gauge.
const TideAlmanacStation = "port-almanac"

// maxAlmanacTides is the most height measurements an almanac row carries.
const maxAlmanacTides = 4

type tideAlmanacCols struct {
	day, month, year int
	heights          []int
}

func matchTideAlmanac(header []string) (tideAlmanacCols, bool) {
	cols := tideAlmanacCols{
		day:   indexOf(header, "Dia"),
		month: indexOf(header, "Mês"),
		year:  indexOf(header, "Ano"),
	}
	if cols.day < 0 || cols.month < 0 || cols.year < 0 {
		return tideAlmanacCols{}, false
	}
	for i := 1; i <= maxAlmanacTides; i++ {
		if idx := indexOf(header, fmt.Sprintf("Maré %d - Altura (m)", i)); idx >= 0 {
			cols.heights = append(cols.heights, idx)
		}
	}
	if len(cols.heights) == 0 {
		return tideAlmanacCols{}, false
	}
	return cols, true
}

// parseTideAlmanacRow averages the heights present on one almanac day.
// Days with no measurement at all are unresolvable.
func parseTideAlmanacRow(cols tideAlmanacCols) rowFunc {
	return func(row []string, _ int) ([]domain.Reading, error) {
		day, err := strconv.Atoi(strings.TrimSpace(row[cols.day]))
		if err != nil {
			return nil, fmt.Errorf("day: %w", err)
		}
		month, err := strconv.Atoi(strings.TrimSpace(row[cols.month]))
		if err != nil {
			return nil, fmt.Errorf("month: %w", err)
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[cols.year]))
		if err != nil {
			return nil, fmt.Errorf("year: %w", err)
		}
		date, ok := validDate(year, timeMonth(month), day)
		if !ok {
			return nil, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
		}

		var sum float64
		var n int
		for _, idx := range cols.heights {
			v, present, err := parseDecimalComma(row[idx])
			if err != nil {
				return nil, fmt.Errorf("height: %w", err)
			}
			if present {
				sum += v
				n++
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("no tide measurements for %s", date.Format("2006-01-02"))
		}

		return []domain.Reading{{
			StationID: TideAlmanacStation,
			Date:      date,
			Metric:    domain.MetricTideM,
			Value:     sum / float64(n),
		}}, nil
	}
}

type tideLongCols struct {
	station, timestamp, height, unit int
}

func matchTideLong(header []string) (tideLongCols, bool) {
	cols := tideLongCols{
		station:   indexOf(header, "station_id"),
		timestamp: indexOf(header, "timestamp"),
		height:    indexOf(header, "height"),
		unit:      indexOf(header, "unit"), // optional
	}
	if cols.station < 0 || cols.timestamp < 0 || cols.height < 0 {
		return tideLongCols{}, false
	}
	return cols, true
}

func parseTideLongRow(cols tideLongCols) rowFunc {
	return func(row []string, _ int) ([]domain.Reading, error) {
		station := strings.TrimSpace(row[cols.station])
		if station == "" {
			return nil, fmt.Errorf("empty station id")
		}
		ts, ok := parseTimestamp(row[cols.timestamp])
		if !ok {
			return nil, fmt.Errorf("unparsable timestamp %q", row[cols.timestamp])
		}
		v, present, err := parseDecimalComma(row[cols.height])
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		if !present {
			return nil, nil // missing measurement, nothing to emit
		}
		unit := ""
		if cols.unit >= 0 {
			unit = row[cols.unit]
		}
		meters, ok := toMeters(v, unit)
		if !ok {
			return nil, fmt.Errorf("unknown tide unit %q", unit)
		}

		return []domain.Reading{{
			StationID: station,
			Date:      domain.Day(ts),
			Metric:    domain.MetricTideM,
			Value:     meters,
		}}, nil
	}
}
