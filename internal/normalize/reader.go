package normalize

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/pgzip"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// SourceKind declares what a raw file is expected to contain.
type SourceKind string

const (
	SourceTide     SourceKind = "tide"
	SourceRainfall SourceKind = "rainfall"
)

// Variant tags a recognized file layout. Parsing dispatches on the tag
// detected from the header.
type Variant string

const (
	VariantTideAlmanac Variant = "tide_almanac"
	VariantTideLong    Variant = "tide_long"
	VariantRainMatrix  Variant = "rain_matrix"
	VariantRainLong    Variant = "rain_long"
)

// Stats counts row outcomes for one file.
type Stats struct {
	RowsRead    int // data rows consumed from the file
	RowsSkipped int // rows dropped because a value could not be resolved
	Readings    int // normalized readings emitted
}

// maxRowErrorsLogged caps per-file warn logs for skipped rows.
const maxRowErrorsLogged = 10

// rowFunc parses one data row into zero or more readings. A returned error
// marks the row unresolvable (skipped and counted, not fatal).
type rowFunc func(row []string, line int) ([]domain.Reading, error)

// Reader streams normalized readings out of one raw file. It is a one-pass
// lazy sequence: call Next until io.EOF, or ReadAll to materialize.
type Reader struct {
	path    string
	file    io.Closer
	gz      io.Closer
	cr      *csv.Reader
	variant Variant
	parse   rowFunc

	pending   []domain.Reading
	stats     Stats
	logger    *slog.Logger
	line      int // current physical row, 1-based (header = 1)
	errLogged int
}

// Open opens a raw file of the declared kind, detects its layout from the
// header, and returns a streaming Reader. Files ending in .gz are
// decompressed transparently.
func Open(path string, kind SourceKind, logger *slog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	r := &Reader{path: path, file: f, logger: logger}

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, domain.ParseErrorf(path, 0, "gzip: %v", err)
		}
		r.gz = gz
		src = gz
	}

	br := bufio.NewReader(src)
	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(br)
	cr.LazyQuotes = true
	r.cr = cr

	header, err := cr.Read()
	if err == io.EOF {
		// Empty file: zero readings, no error.
		r.parse = func([]string, int) ([]domain.Reading, error) { return nil, nil }
		return r, nil
	}
	if err != nil {
		r.Close()
		return nil, domain.ParseErrorf(path, 1, "reading header: %v", err)
	}
	r.line = 1

	// The agency exports are written with a UTF-8 BOM.
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	variant, parse, err := resolveLayout(kind, header)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrParse, path, err)
	}
	r.variant = variant
	r.parse = parse
	return r, nil
}

// detectDelimiter inspects the buffered header line and picks ';' when it
// outnumbers ','; some station exports are semicolon-delimited.
func detectDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte{';'}) > bytes.Count(peek, []byte{','}) {
		return ';'
	}
	return ','
}

// Variant reports the layout detected from the header.
func (r *Reader) Variant() Variant { return r.variant }

// Stats returns the row counters accumulated so far.
func (r *Reader) Stats() Stats { return r.stats }

// Next returns the next normalized reading. It returns io.EOF when the file
// is exhausted. Unresolvable rows are skipped and counted; a structural
// failure (wrong column count) aborts with a parse error.
func (r *Reader) Next() (domain.Reading, error) {
	for {
		if len(r.pending) > 0 {
			reading := r.pending[0]
			r.pending = r.pending[1:]
			return reading, nil
		}

		row, err := r.cr.Read()
		if err == io.EOF {
			return domain.Reading{}, io.EOF
		}
		r.line++
		if err != nil {
			// csv.Reader only fails here on structural problems; the most
			// common is a row whose field count disagrees with the header.
			return domain.Reading{}, domain.ParseErrorf(r.path, r.line, "%v", err)
		}

		r.stats.RowsRead++
		readings, rowErr := r.parse(row, r.line)
		if rowErr != nil {
			r.stats.RowsSkipped++
			r.errLogged++
			if r.logger != nil && r.errLogged <= maxRowErrorsLogged {
				r.logger.Warn("skipping unresolvable row",
					"file", r.path, "row", r.line, "error", rowErr)
			}
			continue
		}
		r.stats.Readings += len(readings)
		r.pending = readings
	}
}

// ReadAll drains the reader and returns every remaining reading.
func (r *Reader) ReadAll() ([]domain.Reading, error) {
	var out []domain.Reading
	for {
		reading, err := r.Next()
		if errors.Is(err, io.EOF) {
			if r.logger != nil && r.errLogged > maxRowErrorsLogged {
				r.logger.Warn("additional skipped rows suppressed",
					"file", r.path, "suppressed", r.errLogged-maxRowErrorsLogged)
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
}

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.file.Close()
}

// resolveLayout matches the header against the known layouts for the kind.
func resolveLayout(kind SourceKind, header []string) (Variant, rowFunc, error) {
	switch kind {
	case SourceTide:
		if cols, ok := matchTideAlmanac(header); ok {
			return VariantTideAlmanac, parseTideAlmanacRow(cols), nil
		}
		if cols, ok := matchTideLong(header); ok {
			return VariantTideLong, parseTideLongRow(cols), nil
		}
		return "", nil, fmt.Errorf("unrecognized tide header %v", header)
	case SourceRainfall:
		if cols, ok := matchRainMatrix(header); ok {
			return VariantRainMatrix, parseRainMatrixRow(cols), nil
		}
		if cols, ok := matchRainLong(header); ok {
			return VariantRainLong, parseRainLongRow(cols), nil
		}
		return "", nil, fmt.Errorf("unrecognized rainfall header %v", header)
	default:
		return "", nil, fmt.Errorf("unknown source kind %q", kind)
	}
}

// indexOf returns the position of a header column by exact name.
func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
