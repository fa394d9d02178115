package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

type rainMatrixCols struct {
	station int
	monthYr int
	days    map[int]int // day of month -> column index
}

func matchRainMatrix(header []string) (rainMatrixCols, bool) {
	cols := rainMatrixCols{
		station: indexOf(header, "Posto"),
		monthYr: indexOf(header, "Mês/Ano"),
		days:    make(map[int]int),
	}
	if cols.station < 0 || cols.monthYr < 0 {
		return rainMatrixCols{}, false
	}
	for day := 1; day <= 31; day++ {
		if idx := indexOf(header, strconv.Itoa(day)); idx >= 0 {
			cols.days[day] = idx
		}
	}
	if len(cols.days) == 0 {
		return rainMatrixCols{}, false
	}
	return cols, true
}

// parseRainMatrixRow expands one (station, month) row into per-day readings.
// Missing days ("-") emit nothing: the aggregator zero-fills. Cells naming a
// day the month does not have (Feb 31) are dropped.
func parseRainMatrixRow(cols rainMatrixCols) rowFunc {
	return func(row []string, _ int) ([]domain.Reading, error) {
		station := strings.TrimSpace(row[cols.station])
		if station == "" {
			return nil, fmt.Errorf("empty station name")
		}

		year, month, err := parseMonthYear(row[cols.monthYr])
		if err != nil {
			return nil, err
		}

		var out []domain.Reading
		for day := 1; day <= 31; day++ {
			idx, ok := cols.days[day]
			if !ok {
				continue
			}
			v, present, err := parseDecimalComma(row[idx])
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", day, err)
			}
			if !present {
				continue
			}
			date, ok := validDate(year, month, day)
			if !ok {
				continue
			}
			out = append(out, domain.Reading{
				StationID: station,
				Date:      date,
				Metric:    domain.MetricRainfallMM,
				Value:     v,
			})
		}
		return out, nil
	}
}

// parseMonthYear splits an APAC "Mês/Ano" cell, e.g. "mai./2024".
func parseMonthYear(s string) (int, time.Month, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparsable month/year %q", s)
	}
	month, ok := parsePTMonth(parts[0])
	if !ok {
		return 0, 0, fmt.Errorf("unknown month abbreviation %q", parts[0])
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("year: %w", err)
	}
	return year, month, nil
}

type rainLongCols struct {
	station, date, value, unit int
}

func matchRainLong(header []string) (rainLongCols, bool) {
	cols := rainLongCols{
		station: indexOf(header, "station_id"),
		date:    indexOf(header, "date"),
		value:   indexOf(header, "value"),
		unit:    indexOf(header, "unit"), // optional
	}
	if cols.station < 0 || cols.date < 0 || cols.value < 0 {
		return rainLongCols{}, false
	}
	return cols, true
}

func parseRainLongRow(cols rainLongCols) rowFunc {
	return func(row []string, _ int) ([]domain.Reading, error) {
		station := strings.TrimSpace(row[cols.station])
		if station == "" {
			return nil, fmt.Errorf("empty station id")
		}
		ts, ok := parseTimestamp(row[cols.date])
		if !ok {
			return nil, fmt.Errorf("unparsable date %q", row[cols.date])
		}
		v, present, err := parseDecimalComma(row[cols.value])
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		if !present {
			return nil, nil
		}
		unit := ""
		if cols.unit >= 0 {
			unit = row[cols.unit]
		}
		mm, ok := toMillimeters(v, unit)
		if !ok {
			return nil, fmt.Errorf("unknown rainfall unit %q", unit)
		}

		return []domain.Reading{{
			StationID: station,
			Date:      domain.Day(ts),
			Metric:    domain.MetricRainfallMM,
			Value:     mm,
		}}, nil
	}
}
