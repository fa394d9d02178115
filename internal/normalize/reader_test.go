package normalize

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenTideAlmanac(t *testing.T) {
	content := "Dia;Mês;Ano;Maré 1 - Altura (m);Maré 2 - Altura (m);Maré 3 - Altura (m);Maré 4 - Altura (m)\n" +
		"1;5;2024;1,8;0,4;1,9;0,5\n" +
		"2;5;2024;2,0;-;-;-\n" +
		"3;5;2024;-;-;-;-\n"

	r, err := Open(writeFile(t, "mares.csv", content), SourceTide, testLogger())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, VariantTideAlmanac, r.Variant())

	readings, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, TideAlmanacStation, readings[0].StationID)
	assert.Equal(t, domain.MetricTideM, readings[0].Metric)
	assert.Equal(t, day(2024, 5, 1), readings[0].Date)
	assert.InDelta(t, (1.8+0.4+1.9+0.5)/4, readings[0].Value, 1e-9)

	// A row with a single measurement uses it as the daily value.
	assert.InDelta(t, 2.0, readings[1].Value, 1e-9)

	// The all-missing row is skipped and counted.
	stats := r.Stats()
	assert.Equal(t, 3, stats.RowsRead)
	assert.Equal(t, 1, stats.RowsSkipped)
	assert.Equal(t, 2, stats.Readings)
}

func TestOpenTideLong(t *testing.T) {
	t.Run("timestamps reduce to days in the source zone", func(t *testing.T) {
		content := "station_id,timestamp,height,unit\n" +
			"porto-recife,2024-05-14T04:30:00-03:00,1.85,m\n" +
			"porto-recife,2024-05-14 16:45,190,cm\n" +
			"porto-recife,2024-05-15 01:00,1.1,m\n"

		r, err := Open(writeFile(t, "tide_long.csv", content), SourceTide, testLogger())
		require.NoError(t, err)
		defer r.Close()

		assert.Equal(t, VariantTideLong, r.Variant())

		readings, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, readings, 3)
		assert.Equal(t, day(2024, 5, 14), readings[0].Date)
		assert.InDelta(t, 1.85, readings[0].Value, 1e-9)
		assert.InDelta(t, 1.90, readings[1].Value, 1e-9) // cm converted

		// 01:00 at -03:00 is 04:00 UTC, still the 15th.
		assert.Equal(t, day(2024, 5, 15), readings[2].Date)
	})

	t.Run("unknown unit skips the row", func(t *testing.T) {
		content := "station_id,timestamp,height,unit\n" +
			"porto-recife,2024-05-14 04:30,6.2,ft\n"

		r, err := Open(writeFile(t, "tide_bad_unit.csv", content), SourceTide, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, readings)
		assert.Equal(t, 1, r.Stats().RowsSkipped)
	})
}

func TestOpenRainMatrix(t *testing.T) {
	header := "Posto;Mês/Ano"
	for d := 1; d <= 31; d++ {
		header += ";" + strconv.Itoa(d)
	}

	t.Run("expands days and drops sentinels", func(t *testing.T) {
		row := "Recife (Várzea);mai./2024;12,5;-;0,8"
		for d := 4; d <= 31; d++ {
			row += ";-"
		}
		r, err := Open(writeFile(t, "chuvas.csv", header+"\n"+row+"\n"), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		assert.Equal(t, VariantRainMatrix, r.Variant())

		readings, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, readings, 2)

		assert.Equal(t, "Recife (Várzea)", readings[0].StationID)
		assert.Equal(t, domain.MetricRainfallMM, readings[0].Metric)
		assert.Equal(t, day(2024, 5, 1), readings[0].Date)
		assert.InDelta(t, 12.5, readings[0].Value, 1e-9)
		assert.Equal(t, day(2024, 5, 3), readings[1].Date)
		assert.InDelta(t, 0.8, readings[1].Value, 1e-9)
	})

	t.Run("calendar-impossible cells are dropped", func(t *testing.T) {
		// February row with a value in the day-31 column.
		cells := make([]string, 31)
		for i := range cells {
			cells[i] = "-"
		}
		cells[0] = "5,0"
		cells[30] = "9,9"
		row := "Recife (Várzea);fev./2024"
		for _, c := range cells {
			row += ";" + c
		}

		r, err := Open(writeFile(t, "chuvas_fev.csv", header+"\n"+row+"\n"), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, readings, 1)
		assert.Equal(t, day(2024, 2, 1), readings[0].Date)
		assert.Equal(t, 0, r.Stats().RowsSkipped)
	})

	t.Run("unknown month abbreviation skips the row", func(t *testing.T) {
		row := "Recife (Várzea);zzz./2024"
		for d := 1; d <= 31; d++ {
			row += ";-"
		}
		r, err := Open(writeFile(t, "chuvas_bad.csv", header+"\n"+row+"\n"), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, readings)
		assert.Equal(t, 1, r.Stats().RowsSkipped)
	})
}

func TestOpenRainLong(t *testing.T) {
	content := "station_id,date,value,unit\n" +
		"Olinda,2024-05-14,32.5,mm\n" +
		"Olinda,2024-05-15,1.0,in\n" +
		"Olinda,2024-05-16,,\n"

	r, err := Open(writeFile(t, "rain_long.csv", content), SourceRainfall, testLogger())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, VariantRainLong, r.Variant())

	readings, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.InDelta(t, 32.5, readings[0].Value, 1e-9)
	assert.InDelta(t, 25.4, readings[1].Value, 1e-9) // inches converted

	// The empty-value row emits nothing but is not an error.
	assert.Equal(t, 3, r.Stats().RowsRead)
	assert.Equal(t, 0, r.Stats().RowsSkipped)
}

func TestOpenEdgeCases(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.csv"), SourceTide, testLogger())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrFileNotFound))
	})

	t.Run("empty file yields zero readings", func(t *testing.T) {
		r, err := Open(writeFile(t, "empty.csv", ""), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, readings)
		assert.Equal(t, Stats{}, r.Stats())
	})

	t.Run("unrecognized header is a parse error", func(t *testing.T) {
		_, err := Open(writeFile(t, "weird.csv", "foo,bar\n1,2\n"), SourceTide, testLogger())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrParse))
	})

	t.Run("wrong column count aborts the file", func(t *testing.T) {
		content := "station_id,date,value,unit\n" +
			"Olinda,2024-05-14,32.5,mm\n" +
			"Olinda,2024-05-15\n"

		r, err := Open(writeFile(t, "ragged.csv", content), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		_, err = r.ReadAll()
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrParse))
		assert.Contains(t, err.Error(), "row 3")
	})

	t.Run("BOM on the header is stripped", func(t *testing.T) {
		content := "\uFEFFstation_id,date,value,unit\n" +
			"Olinda,2024-05-14,5.0,mm\n"

		r, err := Open(writeFile(t, "bom.csv", content), SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		assert.Len(t, readings, 1)
	})

	t.Run("gzipped input is transparent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rain_long.csv.gz")
		f, err := os.Create(path)
		require.NoError(t, err)
		gz := pgzip.NewWriter(f)
		_, err = gz.Write([]byte("station_id,date,value,unit\nOlinda,2024-05-14,7.5,mm\n"))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		require.NoError(t, f.Close())

		r, err := Open(path, SourceRainfall, testLogger())
		require.NoError(t, err)
		defer r.Close()

		readings, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, readings, 1)
		assert.InDelta(t, 7.5, readings[0].Value, 1e-9)
	})
}
