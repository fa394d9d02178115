package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// Load builds a Table from reference CSVs. Empty paths fall back to the
// built-in Recife defaults for the corresponding part.
func Load(neighborhoodsPath, stationsPath string) (*Table, error) {
	neighborhoods := recifeNeighborhoods
	stations := recifeStations

	if neighborhoodsPath != "" {
		loaded, err := loadNeighborhoodsCSV(neighborhoodsPath)
		if err != nil {
			return nil, err
		}
		neighborhoods = loaded
	}
	if stationsPath != "" {
		loaded, err := loadStationsCSV(stationsPath)
		if err != nil {
			return nil, err
		}
		stations = loaded
	}
	return New(neighborhoods, stations)
}

// loadNeighborhoodsCSV reads the neighborhood reference file. Expected
// header: neighborhood_id,lat,lon,altitude_m,zone,vulnerability,pop_density,
// tide_exposure,rain_exposure.
func loadNeighborhoodsCSV(path string) ([]Neighborhood, error) {
	rows, err := readCSV(path, 9)
	if err != nil {
		return nil, err
	}

	out := make([]Neighborhood, 0, len(rows))
	for i, row := range rows {
		n, err := parseNeighborhoodRow(row)
		if err != nil {
			return nil, domain.ParseErrorf(path, i+2, "invalid neighborhood row: %v", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseNeighborhoodRow(row []string) (Neighborhood, error) {
	n := Neighborhood{ID: row[0], Zone: ZoneKind(row[4])}

	var err error
	if n.Lat, err = strconv.ParseFloat(row[1], 64); err != nil {
		return Neighborhood{}, fmt.Errorf("lat: %w", err)
	}
	if n.Lon, err = strconv.ParseFloat(row[2], 64); err != nil {
		return Neighborhood{}, fmt.Errorf("lon: %w", err)
	}
	if n.AltitudeM, err = strconv.Atoi(row[3]); err != nil {
		return Neighborhood{}, fmt.Errorf("altitude_m: %w", err)
	}
	if n.Vulnerability, err = strconv.ParseFloat(row[5], 64); err != nil {
		return Neighborhood{}, fmt.Errorf("vulnerability: %w", err)
	}
	if n.PopDensity, err = strconv.Atoi(row[6]); err != nil {
		return Neighborhood{}, fmt.Errorf("pop_density: %w", err)
	}
	if n.TideExposure, err = strconv.ParseFloat(row[7], 64); err != nil {
		return Neighborhood{}, fmt.Errorf("tide_exposure: %w", err)
	}
	if n.RainExposure, err = strconv.ParseFloat(row[8], 64); err != nil {
		return Neighborhood{}, fmt.Errorf("rain_exposure: %w", err)
	}
	return n, nil
}

// loadStationsCSV reads the station mapping file. Expected header:
// station_id,neighborhood_id.
func loadStationsCSV(path string) (map[string]string, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row[0]] = row[1]
	}
	return out, nil
}

// readCSV reads all data rows of a header-prefixed CSV, enforcing the column
// count.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = fields

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, domain.ParseErrorf(path, 1, "reading header: %v", err)
	}

	var rows [][]string
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.ParseErrorf(path, row, "%v", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
