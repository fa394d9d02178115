// Package domain models the per-neighborhood flood-risk dataset for the
// Recife metropolitan region.
//
// # Data Sources
//
// Tide heights come from the port authority tide almanac, published as a
// yearly CSV with one row per calendar day and up to four tide readings
// per row ("Maré 1 - Altura (m)" through "Maré 4 - Altura (m)"), using a
// comma as the decimal separator. Some stations instead export a long
// layout with one row per reading.
//
// Rainfall comes from the APAC pluviometric station network, published as
// a monthly matrix CSV: one row per (station, month) with one column per
// day of the month, "-" marking days without a measurement. A long
// per-day export is also in circulation.
//
// # Canonical Schema
//
// Both sources are normalized into Reading values (station, UTC calendar
// day, metric, value in mm or meters) and then aggregated into one
// NeighborhoodDay per (neighborhood, day). Station readings map onto
// neighborhoods through a static reference table; vulnerability is a
// static per-neighborhood susceptibility score in [0, 1] derived from
// socioeconomic data.
//
// # Risk Score
//
// The composite risk score in [0, 1] combines normalized rainfall, tide,
// vulnerability, and occurrence history with configured weights, plus an
// interaction term when rainfall and tide are simultaneously elevated.
// Scoring is deterministic: identical input and configuration always
// produce the same score, which keeps reprocessed outputs byte-identical.
package domain
