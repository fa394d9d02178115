// Package normalize parses raw tide and rainfall exports into canonical
// per-station, per-day readings.
//
// # Supported Layouts
//
// Tide:
//
//	almanac: the port authority yearly table. One row per calendar day
//	with "Dia", "Mês", "Ano" columns and up to four height columns
//	"Maré 1 - Altura (m)" .. "Maré 4 - Altura (m)". Heights use a decimal
//	comma ("1,8" = 1.8 m) and a day's reading is the mean of the
//	measurements present. Days with no measurement are omitted; the
//	aggregator fills them from the series mean.
//
//	long: one row per measurement: station_id, timestamp, height, and an
//	optional unit column ("m" or "cm", default meters).
//
// Rainfall:
//
//	matrix: the APAC monthly export. One row per (station, month) with a
//	"Posto" station column, a "Mês/Ano" column using pt-BR month
//	abbreviations ("mai./2024"), one column per day of month ("1" .. "31")
//	with decimal-comma millimeters, and "-" marking missing days.
//	Calendar-impossible cells (Feb 31) are dropped.
//
//	long: one row per (station, day): station_id, date, value, and an
//	optional unit column ("mm" or "in", default millimeters).
//
// The layout is detected from the header and parsing dispatches on the
// detected variant tag; there is no per-row column sniffing.
//
// # Normalization Rules
//
// All rainfall converts to millimeters and all tide heights to meters.
// Timestamps without an explicit zone are interpreted at the fixed -03:00
// offset of the source region and reduced to UTC calendar days.
//
// # Error Policy
//
// A row whose values cannot be resolved (unparsable number or date) is
// skipped and counted in Stats, never fatal. A row with the wrong column
// count for the detected layout is a structural failure and aborts the
// file with a parse error carrying the row number. A missing file fails
// with the file-not-found kind; an empty file yields zero readings.
//
// Files ending in .gz are decompressed transparently.
package normalize
