// Package table reads and writes the canonical aggregated output: one
// delimited row per (neighborhood, day), sorted by (neighborhood_id, date).
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// Columns is the canonical column order of the output table.
var Columns = []string{
	"neighborhood_id", "date", "rainfall_mm", "tide_m",
	"vulnerability", "occurrence_count", "risk_score",
}

const dateLayout = "2006-01-02"

// Write writes the table atomically: rows go to a temp file in the target
// directory which is renamed over the destination only on success. A failed
// run therefore never disturbs previously written output.
func Write(path string, days []domain.NeighborhoodDay) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := WriteTo(tmp, days); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// WriteTo streams the table in canonical form. Float formatting is fixed so
// identical inputs always produce byte-identical output: rainfall at two
// decimals, tide and vulnerability at three, risk score at the shortest
// exact representation.
func WriteTo(w io.Writer, days []domain.NeighborhoodDay) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range days {
		d := &days[i]
		rec := []string{
			d.NeighborhoodID,
			d.Date.Format(dateLayout),
			strconv.FormatFloat(d.RainfallMM, 'f', 2, 64),
			strconv.FormatFloat(d.TideM, 'f', 3, 64),
			strconv.FormatFloat(d.Vulnerability, 'f', 3, 64),
			strconv.Itoa(d.Occurrences),
			strconv.FormatFloat(d.RiskScore, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read loads a table previously produced by Write.
func Read(path string) ([]domain.NeighborhoodDay, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadFrom(f, path)
}

// ReadFrom parses the canonical table from r; path is used in error
// messages only.
func ReadFrom(r io.Reader, path string) ([]domain.NeighborhoodDay, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ParseErrorf(path, 1, "reading header: %v", err)
	}
	if strings.Join(header, ",") != strings.Join(Columns, ",") {
		return nil, domain.ParseErrorf(path, 1, "unexpected header %v", header)
	}

	var out []domain.NeighborhoodDay
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, domain.ParseErrorf(path, row, "%v", err)
		}
		day, err := parseRow(rec)
		if err != nil {
			return nil, domain.ParseErrorf(path, row, "%v", err)
		}
		out = append(out, day)
	}
}

func parseRow(rec []string) (domain.NeighborhoodDay, error) {
	date, err := time.ParseInLocation(dateLayout, rec[1], time.UTC)
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("date: %w", err)
	}
	rain, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("rainfall_mm: %w", err)
	}
	tide, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("tide_m: %w", err)
	}
	vuln, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("vulnerability: %w", err)
	}
	occ, err := strconv.Atoi(rec[5])
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("occurrence_count: %w", err)
	}
	score, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return domain.NeighborhoodDay{}, fmt.Errorf("risk_score: %w", err)
	}
	return domain.NeighborhoodDay{
		NeighborhoodID: rec[0],
		Date:           date,
		RainfallMM:     rain,
		TideM:          tide,
		Vulnerability:  vuln,
		Occurrences:    occ,
		RiskScore:      score,
	}, nil
}
