// Command genfixtures writes seeded synthetic tide and rainfall CSV files
// in every layout the normalizer accepts. The fixtures feed the test suites
// and make local conversion runs possible without the upstream exports.
//
// Usage:
//
//	go run ./cmd/genfixtures -out-dir testdata -seed 42 -year 2024 -month 5
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/recifesafe/floodrisk-etl/internal/refdata"
)

var ptMonthAbbr = map[time.Month]string{
	time.January: "jan.", time.February: "fev.", time.March: "mar.",
	time.April: "abr.", time.May: "mai.", time.June: "jun.",
	time.July: "jul.", time.August: "ago.", time.September: "set.",
	time.October: "out.", time.November: "nov.", time.December: "dez.",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write fixture CSVs into")
	seed := flag.Int64("seed", 42, "seed for synthetic values")
	year := flag.Int("year", 2024, "fixture year")
	month := flag.Int("month", 5, "fixture month (1-12)")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *month < 1 || *month > 12 {
		return fmt.Errorf("month must be 1-12, got %d", *month)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	m := time.Month(*month)
	daysInMonth := time.Date(*year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()

	// Tide heights: semidiurnal pattern around 1.1m with seeded noise.
	tides := make([][4]float64, daysInMonth)
	for d := range tides {
		phase := float64(d) / 14.0 * 2 * math.Pi
		base := 1.1 + 0.5*math.Sin(phase)
		for i := 0; i < 4; i++ {
			tides[d][i] = math.Max(0.1, base+rng.NormFloat64()*0.2)
		}
	}

	// Rainfall per station and day. A wet spell in the middle of the
	// month gives the scorer something in every band.
	stations := refdata.Default().StationIDs()
	rain := make(map[string][]float64, len(stations))
	for _, st := range stations {
		values := make([]float64, daysInMonth)
		for d := range values {
			if rng.Float64() < 0.4 {
				continue // dry day
			}
			mm := rng.ExpFloat64() * 8
			if d >= 12 && d <= 17 {
				mm += rng.Float64() * 60
			}
			values[d] = math.Round(mm*10) / 10
		}
		rain[st] = values
	}

	files := []struct {
		name  string
		write func(path string) error
	}{
		{"tide_almanac.csv", func(p string) error { return writeTideAlmanac(p, *year, m, tides) }},
		{"tide_long.csv", func(p string) error { return writeTideLong(p, *year, m, tides) }},
		{"rain_matrix.csv", func(p string) error { return writeRainMatrix(p, *year, m, stations, rain) }},
		{"rain_long.csv", func(p string) error { return writeRainLong(p, *year, m, stations, rain) }},
	}
	for _, f := range files {
		path := filepath.Join(*outDir, f.name)
		if err := f.write(path); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// decimalComma formats v with the pt-BR decimal separator.
func decimalComma(v float64, decimals int) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', decimals, 64), ".", ",")
}

func writeTideAlmanac(path string, year int, month time.Month, tides [][4]float64) error {
	rows := [][]string{{"Dia", "Mês", "Ano", "Maré 1 - Altura (m)", "Maré 2 - Altura (m)", "Maré 3 - Altura (m)", "Maré 4 - Altura (m)"}}
	for d, heights := range tides {
		row := []string{
			strconv.Itoa(d + 1),
			strconv.Itoa(int(month)),
			strconv.Itoa(year),
		}
		for _, h := range heights {
			row = append(row, decimalComma(h, 2))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, ';', rows)
}

func writeTideLong(path string, year int, month time.Month, tides [][4]float64) error {
	rows := [][]string{{"station_id", "timestamp", "height", "unit"}}
	hours := []int{4, 10, 16, 22}
	zone := time.FixedZone("-03", -3*60*60)
	for d, heights := range tides {
		for i, h := range heights {
			ts := time.Date(year, month, d+1, hours[i], 0, 0, 0, zone)
			rows = append(rows, []string{
				"port-almanac",
				ts.Format(time.RFC3339),
				strconv.FormatFloat(h, 'f', 2, 64),
				"m",
			})
		}
	}
	return writeCSV(path, ',', rows)
}

func writeRainMatrix(path string, year int, month time.Month, stations []string, rain map[string][]float64) error {
	header := []string{"Posto", "Mês/Ano"}
	for d := 1; d <= 31; d++ {
		header = append(header, strconv.Itoa(d))
	}
	rows := [][]string{header}
	monthYear := fmt.Sprintf("%s/%d", ptMonthAbbr[month], year)
	for _, st := range stations {
		row := []string{st, monthYear}
		values := rain[st]
		for d := 0; d < 31; d++ {
			if d >= len(values) || values[d] == 0 {
				row = append(row, "-")
			} else {
				row = append(row, decimalComma(values[d], 1))
			}
		}
		rows = append(rows, row)
	}
	return writeCSV(path, ';', rows)
}

func writeRainLong(path string, year int, month time.Month, stations []string, rain map[string][]float64) error {
	rows := [][]string{{"station_id", "date", "value", "unit"}}
	for _, st := range stations {
		for d, v := range rain[st] {
			if v == 0 {
				continue
			}
			date := time.Date(year, month, d+1, 0, 0, 0, 0, time.UTC)
			rows = append(rows, []string{
				st,
				date.Format("2006-01-02"),
				strconv.FormatFloat(v, 'f', 1, 64),
				"mm",
			})
		}
	}
	return writeCSV(path, ',', rows)
}

func writeCSV(path string, delim rune, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
