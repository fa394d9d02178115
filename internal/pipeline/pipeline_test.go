package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recifesafe/floodrisk-etl/internal/aggregate"
	"github.com/recifesafe/floodrisk-etl/internal/domain"
	"github.com/recifesafe/floodrisk-etl/internal/observability"
	"github.com/recifesafe/floodrisk-etl/internal/refdata"
	"github.com/recifesafe/floodrisk-etl/internal/risk"
	"github.com/recifesafe/floodrisk-etl/internal/store"
	"github.com/recifesafe/floodrisk-etl/internal/table"
)

const tideFixture = "station_id,timestamp,height,unit\n" +
	"porto-recife,2024-05-14 04:30,1.35,m\n" +
	"porto-recife,2024-05-15 04:30,0.90,m\n"

const rainFixture = "station_id,date,value,unit\n" +
	"est-pina,2024-05-14,78.0,mm\n" +
	"est-pina,2024-05-15,2.5,mm\n" +
	"est-varzea,2024-05-14,30.0,mm\n"

func testConverter(t *testing.T, st Store) *Converter {
	t.Helper()
	refs, err := refdata.New([]refdata.Neighborhood{
		{ID: "Pina", Zone: refdata.ZoneCoastal, Vulnerability: 0.68, PopDensity: 12200, TideExposure: 0.90, RainExposure: 0.70},
		{ID: "Várzea", Zone: refdata.ZoneHill, Vulnerability: 0.35, PopDensity: 6200, TideExposure: 0.05, RainExposure: 0.50},
	}, map[string]string{
		"est-pina":   "Pina",
		"est-varzea": "Várzea",
	})
	require.NoError(t, err)

	scorer, err := risk.NewScorer(risk.DefaultConfig())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(refs, scorer, aggregate.Options{}, st, logger, observability.NewMetricsForTesting())
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	tidePath := writeFixture(t, dir, "tide.csv", tideFixture)
	rainPath := writeFixture(t, dir, "rain.csv", rainFixture)
	outPath := filepath.Join(dir, "out", "days.csv")

	c := testConverter(t, nil)
	summary, err := c.Convert(context.Background(), Inputs{
		TidePath: tidePath,
		RainPath: rainPath,
		OutPath:  outPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TideRowsRead)
	assert.Equal(t, 3, summary.RainRowsRead)
	assert.Equal(t, 0, summary.TideRowsSkipped)
	assert.Equal(t, 4, summary.DaysWritten) // 2 neighborhoods x 2 days
	assert.Positive(t, summary.HighRiskDays)

	days, err := table.Read(outPath)
	require.NoError(t, err)
	require.Len(t, days, 4)

	// Pina on the storm day: intense rain plus a high tide.
	storm := days[0]
	assert.Equal(t, "Pina", storm.NeighborhoodID)
	assert.Equal(t, 78.0, storm.RainfallMM)
	assert.Equal(t, 1.35, storm.TideM)
	assert.Greater(t, storm.RiskScore, 0.7)

	// Every row carries a score in range.
	for _, d := range days {
		assert.GreaterOrEqual(t, d.RiskScore, 0.0)
		assert.LessOrEqual(t, d.RiskScore, 1.0)
	}
}

func TestConvertWithOccurrences(t *testing.T) {
	dir := t.TempDir()
	tidePath := writeFixture(t, dir, "tide.csv", tideFixture)
	rainPath := writeFixture(t, dir, "rain.csv", rainFixture)
	occPath := writeFixture(t, dir, "occ.csv",
		"neighborhood_id,date,count\nPina,2024-05-14,3\n")
	outPath := filepath.Join(dir, "days.csv")

	c := testConverter(t, nil)
	_, err := c.Convert(context.Background(), Inputs{
		TidePath:        tidePath,
		RainPath:        rainPath,
		OccurrencesPath: occPath,
		OutPath:         outPath,
	})
	require.NoError(t, err)

	days, err := table.Read(outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, days[0].Occurrences)
	assert.Equal(t, 0, days[1].Occurrences)
}

func TestConvertPersistsToStore(t *testing.T) {
	dir := t.TempDir()
	tidePath := writeFixture(t, dir, "tide.csv", tideFixture)
	rainPath := writeFixture(t, dir, "rain.csv", rainFixture)

	st, err := store.Open(filepath.Join(dir, "risk.db"))
	require.NoError(t, err)
	defer st.Close()

	c := testConverter(t, st)
	_, err = c.Convert(context.Background(), Inputs{
		TidePath: tidePath,
		RainPath: rainPath,
	})
	require.NoError(t, err)

	days, err := st.ListDays(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, days, 4)
}

func TestConvertFailureLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	tidePath := writeFixture(t, dir, "tide.csv", tideFixture)
	rainPath := writeFixture(t, dir, "rain.csv", rainFixture)
	outPath := filepath.Join(dir, "days.csv")

	c := testConverter(t, nil)
	_, err := c.Convert(context.Background(), Inputs{
		TidePath: tidePath, RainPath: rainPath, OutPath: outPath,
	})
	require.NoError(t, err)
	before, err := os.ReadFile(outPath)
	require.NoError(t, err)

	t.Run("structurally broken rain file", func(t *testing.T) {
		badRain := writeFixture(t, dir, "bad_rain.csv",
			"station_id,date,value,unit\nest-pina,2024-05-14\n")

		_, err := c.Convert(context.Background(), Inputs{
			TidePath: tidePath, RainPath: badRain, OutPath: outPath,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrParse))

		after, readErr := os.ReadFile(outPath)
		require.NoError(t, readErr)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("missing tide file", func(t *testing.T) {
		_, err := c.Convert(context.Background(), Inputs{
			TidePath: filepath.Join(dir, "nope.csv"), RainPath: rainPath, OutPath: outPath,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrFileNotFound))

		after, readErr := os.ReadFile(outPath)
		require.NoError(t, readErr)
		assert.Equal(t, string(before), string(after))
	})
}

func TestConvertSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	tidePath := writeFixture(t, dir, "tide.csv", tideFixture)
	rainPath := writeFixture(t, dir, "rain.csv",
		"station_id,date,value,unit\n"+
			"est-pina,2024-05-14,78.0,mm\n"+
			"est-pina,not-a-date,5.0,mm\n")
	outPath := filepath.Join(dir, "days.csv")

	c := testConverter(t, nil)
	summary, err := c.Convert(context.Background(), Inputs{
		TidePath: tidePath, RainPath: rainPath, OutPath: outPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RainRowsRead)
	assert.Equal(t, 1, summary.RainRowsSkipped)
	assert.Equal(t, 4, summary.DaysWritten)
}
