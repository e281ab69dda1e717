// Package export writes mapped product records to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultOutputDir is used when no output directory is given.
const DefaultOutputDir = "output_data"

// timestampLayout renders as YYYY_MM_DD_HH_MM_SS.
const timestampLayout = "2006_01_02_15_04_05"

// Record is a product record that can be flattened into CSV rows.
// Every row returned by CSVRows has len(CSVHeader()) columns.
type Record interface {
	CSVHeader() []string
	CSVRows() [][]string
}

// Target names the output of one export.
type Target struct {
	Product      string
	Subtype      string
	LocationType string
	OutputDir    string
}

// FileName returns "<timestamp>_<product>_<subtype>[_<location>].csv".
func (t Target) FileName(timestamp string) string {
	parts := []string{timestamp, t.Product, t.Subtype}
	if t.LocationType != "" {
		parts = append(parts, t.LocationType)
	}
	return strings.Join(parts, "_") + ".csv"
}

// Exporter persists a full record set for one top-level call.
type Exporter interface {
	Export(target Target, records []Record) (string, error)
}

// Records converts a typed record slice for Export.
func Records[T Record](recs []T) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

// CSVExporter writes records to CSV files on local disk.
type CSVExporter struct {
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewCSVExporter creates an exporter using the real clock.
func NewCSVExporter() *CSVExporter {
	return NewCSVExporterWithClock(clockwork.NewRealClock())
}

// NewCSVExporterWithClock creates an exporter with a custom time source.
func NewCSVExporterWithClock(clock clockwork.Clock) *CSVExporter {
	return &CSVExporter{
		clock:  clock,
		logger: log.With().Str("component", "csv-exporter").Logger(),
	}
}

// Export writes records to a new file under target.OutputDir and returns
// the path written.
func (e *CSVExporter) Export(target Target, records []Record) (string, error) {
	dir := target.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, target.FileName(e.clock.Now().Format(timestampLayout)))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}

	rows, err := write(f, records)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close csv file: %w", closeErr)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info().
		Str("path", path).
		Int("records", len(records)).
		Int("rows", rows).
		Msg("CSV export written")

	return path, nil
}

func write(out io.Writer, records []Record) (int, error) {
	w := csv.NewWriter(out)

	if len(records) == 0 {
		w.Flush()
		return 0, w.Error()
	}

	if err := w.Write(records[0].CSVHeader()); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0
	for _, rec := range records {
		for _, row := range rec.CSVRows() {
			if err := w.Write(row); err != nil {
				return rows, fmt.Errorf("write csv row: %w", err)
			}
			rows++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return rows, fmt.Errorf("flush csv: %w", err)
	}
	return rows, nil
}
