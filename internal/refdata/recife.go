package refdata

// Default returns the built-in reference table for the 15 monitored Recife
// neighborhoods. Vulnerability and density figures come from the municipal
// socioeconomic survey; exposure factors reflect historical flood records.
func Default() *Table {
	t, err := New(recifeNeighborhoods, recifeStations)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return t
}

var recifeNeighborhoods = []Neighborhood{
	{ID: "Afogados", Lat: -8.0531, Lon: -34.9189, AltitudeM: 4, Zone: ZoneRiverine, Vulnerability: 0.78, PopDensity: 16700, TideExposure: 0.65, RainExposure: 0.85},
	{ID: "Apipucos", Lat: -8.0303, Lon: -34.9431, AltitudeM: 50, Zone: ZoneHill, Vulnerability: 0.28, PopDensity: 4800, TideExposure: 0.08, RainExposure: 0.45},
	{ID: "Boa Viagem", Lat: -8.1228, Lon: -34.8978, AltitudeM: 5, Zone: ZoneCoastal, Vulnerability: 0.45, PopDensity: 9800, TideExposure: 0.75, RainExposure: 0.50},
	{ID: "Brasília Teimosa", Lat: -8.0891, Lon: -34.8796, AltitudeM: 2, Zone: ZoneCoastal, Vulnerability: 0.82, PopDensity: 18500, TideExposure: 0.95, RainExposure: 0.75},
	{ID: "Casa Forte", Lat: -8.0189, Lon: -34.9247, AltitudeM: 45, Zone: ZoneHill, Vulnerability: 0.25, PopDensity: 5400, TideExposure: 0.10, RainExposure: 0.40},
	{ID: "Coelhos", Lat: -8.0636, Lon: -34.8717, AltitudeM: 3, Zone: ZoneRiverine, Vulnerability: 0.72, PopDensity: 14300, TideExposure: 0.80, RainExposure: 0.78},
	{ID: "Cordeiro", Lat: -8.0508, Lon: -34.9378, AltitudeM: 25, Zone: ZoneMidUrban, Vulnerability: 0.48, PopDensity: 8700, TideExposure: 0.25, RainExposure: 0.55},
	{ID: "Ibura", Lat: -8.1189, Lon: -34.9447, AltitudeM: 12, Zone: ZoneDenseUrban, Vulnerability: 0.75, PopDensity: 17500, TideExposure: 0.30, RainExposure: 0.80},
	{ID: "Ilha Joana Bezerra", Lat: -8.0647, Lon: -34.8972, AltitudeM: 2, Zone: ZoneRiverine, Vulnerability: 0.85, PopDensity: 19200, TideExposure: 0.88, RainExposure: 0.90},
	{ID: "Madalena", Lat: -8.0547, Lon: -34.9147, AltitudeM: 10, Zone: ZoneMidUrban, Vulnerability: 0.52, PopDensity: 9800, TideExposure: 0.35, RainExposure: 0.60},
	{ID: "Pina", Lat: -8.0856, Lon: -34.8831, AltitudeM: 3, Zone: ZoneCoastal, Vulnerability: 0.68, PopDensity: 12200, TideExposure: 0.90, RainExposure: 0.70},
	{ID: "Santo Amaro", Lat: -8.0469, Lon: -34.8839, AltitudeM: 8, Zone: ZoneDenseUrban, Vulnerability: 0.65, PopDensity: 13800, TideExposure: 0.45, RainExposure: 0.70},
	{ID: "São José", Lat: -8.0569, Lon: -34.8819, AltitudeM: 6, Zone: ZoneDenseUrban, Vulnerability: 0.62, PopDensity: 12900, TideExposure: 0.50, RainExposure: 0.68},
	{ID: "Torre", Lat: -8.0456, Lon: -34.9025, AltitudeM: 15, Zone: ZoneMidUrban, Vulnerability: 0.42, PopDensity: 7600, TideExposure: 0.28, RainExposure: 0.52},
	{ID: "Várzea", Lat: -8.0411, Lon: -34.9536, AltitudeM: 55, Zone: ZoneHill, Vulnerability: 0.35, PopDensity: 6200, TideExposure: 0.05, RainExposure: 0.50},
}

// recifeStations maps APAC pluviometric station names to the neighborhood
// whose readings they stand in for. Several metropolitan-region stations map
// onto the same neighborhood; the aggregator averages them.
var recifeStations = map[string]string{
	"Recife (Alto da Brasileira)":             "Torre",
	"Recife (Codecipe / Santo Amaro)":         "Santo Amaro",
	"Recife (Várzea)":                         "Várzea",
	"Olinda (Alto da Bondade)":                "Casa Forte",
	"Olinda (Academia Santa Gertrudes)":       "Casa Forte",
	"Olinda":                                  "Casa Forte",
	"Jaboatão (Cidade da Copa)":               "Boa Viagem",
	"Jaboatão dos Guararapes":                 "Boa Viagem",
	"Jaboatão dos Guararapes (Bar.Duas Unas)": "Pina",
	"Camaragibe":                              "Cordeiro",
	"São Lourenço da Mata (Tapacurá)":         "Apipucos",
	"Cabo":                                    "Boa Viagem",
	"Cabo (Barragem de Gurjaú)":               "Ibura",
	"Cabo (Barragem de Suape)":                "Boa Viagem",
	"Cabo (Pirapama)":                         "Ibura",
	"Paulista":                                "Madalena",
	"Abreu e Lima":                            "Madalena",
	"Moreno":                                  "Ibura",
	"Igarassu":                                "Afogados",
	"Igarassu (Bar.Catucá)":                   "Afogados",
	"Igarassu (Usina São José)":               "Afogados",
	"Ipojuca":                                 "Boa Viagem",
	"Ipojuca (Suape)":                         "Boa Viagem",
	"Itamaracá":                               "Brasília Teimosa",
	"Itapissuma":                              "Brasília Teimosa",
	"Goiana (Itapirema - IPA)":                "Coelhos",
	"Goiana":                                  "Coelhos",
	"Araçoiaba (Granja Cristo Redentor)":      "Ilha Joana Bezerra",
}
