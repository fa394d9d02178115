package main

import (
	"fmt"

	"github.com/recifesafe/floodrisk-etl/internal/table"
)

// checkOutput re-reads the written table and verifies its integrity: the
// expected row count, unique (neighborhood, date) keys in ascending order,
// and every value inside its documented range.
func checkOutput(path string, wantRows int) error {
	days, err := table.Read(path)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	if len(days) != wantRows {
		return fmt.Errorf("check: %s has %d rows, expected %d", path, len(days), wantRows)
	}

	for i := range days {
		d := &days[i]
		if i > 0 {
			prev := &days[i-1]
			if d.NeighborhoodID < prev.NeighborhoodID ||
				(d.NeighborhoodID == prev.NeighborhoodID && !d.Date.After(prev.Date)) {
				return fmt.Errorf("check: row %d out of order or duplicated: %s %s",
					i+2, d.NeighborhoodID, d.Date.Format("2006-01-02"))
			}
		}
		if d.RainfallMM < 0 || d.TideM < 0 || d.Occurrences < 0 {
			return fmt.Errorf("check: row %d has a negative measurement", i+2)
		}
		if d.Vulnerability < 0 || d.Vulnerability > 1 {
			return fmt.Errorf("check: row %d vulnerability %.3f outside [0,1]", i+2, d.Vulnerability)
		}
		if d.RiskScore < 0 || d.RiskScore > 1 {
			return fmt.Errorf("check: row %d risk score %f outside [0,1]", i+2, d.RiskScore)
		}
	}
	return nil
}
