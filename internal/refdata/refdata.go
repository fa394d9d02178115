// Package refdata holds the static neighborhood reference table and the
// station-to-neighborhood mapping. Both are loaded once at process start and
// are immutable afterwards; the aggregator and scorer receive them as plain
// values.
package refdata

import (
	"sort"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// ZoneKind classifies a neighborhood's dominant flood exposure profile.
type ZoneKind string

const (
	ZoneCoastal    ZoneKind = "coastal"
	ZoneRiverine   ZoneKind = "riverine"
	ZoneHill       ZoneKind = "hill"
	ZoneDenseUrban ZoneKind = "dense_urban"
	ZoneMidUrban   ZoneKind = "mid_urban"
)

// Neighborhood carries the static attributes of one neighborhood.
type Neighborhood struct {
	ID            string
	Lat           float64
	Lon           float64
	AltitudeM     int
	Zone          ZoneKind
	Vulnerability float64 // susceptibility in [0, 1]
	PopDensity    int     // inhabitants per km²
	TideExposure  float64 // relative tide exposure in [0, 1]
	RainExposure  float64 // relative rainfall exposure in [0, 1]
}

// Table is the loaded reference configuration.
type Table struct {
	neighborhoods map[string]Neighborhood
	stations      map[string]string // station id -> neighborhood id
}

// New builds a Table from explicit neighborhood and station slices.
func New(neighborhoods []Neighborhood, stations map[string]string) (*Table, error) {
	t := &Table{
		neighborhoods: make(map[string]Neighborhood, len(neighborhoods)),
		stations:      make(map[string]string, len(stations)),
	}
	for _, n := range neighborhoods {
		if n.ID == "" {
			return nil, domain.ConfigErrorf("neighborhood with empty id")
		}
		if n.Vulnerability < 0 || n.Vulnerability > 1 {
			return nil, domain.ConfigErrorf("neighborhood %q: vulnerability %.3f outside [0,1]", n.ID, n.Vulnerability)
		}
		t.neighborhoods[n.ID] = n
	}
	for station, nbhd := range stations {
		if _, ok := t.neighborhoods[nbhd]; !ok {
			return nil, domain.ConfigErrorf("station %q maps to unknown neighborhood %q", station, nbhd)
		}
		t.stations[station] = nbhd
	}
	return t, nil
}

// Neighborhood looks up a neighborhood by id.
func (t *Table) Neighborhood(id string) (Neighborhood, error) {
	n, ok := t.neighborhoods[id]
	if !ok {
		return Neighborhood{}, domain.ConfigErrorf("unknown neighborhood %q", id)
	}
	return n, nil
}

// NeighborhoodForStation resolves a station id to its neighborhood.
func (t *Table) NeighborhoodForStation(stationID string) (Neighborhood, error) {
	nbhd, ok := t.stations[stationID]
	if !ok {
		return Neighborhood{}, domain.ConfigErrorf("station %q has no neighborhood mapping", stationID)
	}
	return t.Neighborhood(nbhd)
}

// IDs returns all neighborhood ids in ascending order.
func (t *Table) IDs() []string {
	ids := make([]string, 0, len(t.neighborhoods))
	for id := range t.neighborhoods {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StationIDs returns all mapped station ids in ascending order.
func (t *Table) StationIDs() []string {
	ids := make([]string, 0, len(t.stations))
	for id := range t.stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of configured neighborhoods.
func (t *Table) Len() int { return len(t.neighborhoods) }
