package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpps-dados/carteira/internal/domain"
)

// Writer persists or publishes a report to one destination.
type Writer interface {
	Name() string
	Write(ctx context.Context, report domain.Report) error
}

// Service delegates a report to every configured Writer.
type Service struct {
	writers []Writer
}

// NewService creates an export Service. Nil writers are skipped.
func NewService(writers ...Writer) *Service {
	s := &Service{}
	for _, w := range writers {
		if w != nil {
			s.writers = append(s.writers, w)
		}
	}
	return s
}

// Export runs every writer, even after a failure, and returns the joined errors.
func (s *Service) Export(ctx context.Context, report domain.Report) error {
	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			slog.Error("export: writer failed", "writer", w.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
			continue
		}
		slog.Info("export: writer completed", "writer", w.Name())
	}
	return errors.Join(errs...)
}

// File names, parameterized by the queried year.
func SegmentsFileName(year int) string { return fmt.Sprintf("investimentos_por_segmento_%d.csv", year) }
func PeriodsFileName(year int) string { return fmt.Sprintf("investimentos_por_periodo_%d.csv", year) }
func BreakdownFileName(year int) string { return fmt.Sprintf("investimentos_segmento_periodo_%d.csv", year) }
func RecordsFileName(year int) string { return fmt.Sprintf("carteira_%d.csv", year) }
func WorkbookFileName(year int) string { return fmt.Sprintf("carteira_%d.xlsx", year) }
func DownloadFileName(year int) string { return fmt.Sprintf("montante_total_%d.csv", year) }

// FileWriter writes the CSV summaries, the raw record dump and optionally the workbook
// into a directory.
type FileWriter struct {
	dir    string
	format CSVFormat
	xlsx   bool
}

// NewFileWriter creates a FileWriter.
func NewFileWriter(dir string, format CSVFormat, xlsx bool) *FileWriter {
	return &FileWriter{dir: dir, format: format, xlsx: xlsx}
}

// Name identifies the destination in logs.
func (w *FileWriter) Name() string {
	return "files:" + w.dir
}

type outputFile struct {
	name  string
	write func(io.Writer) error
}

// Write creates the directory if needed and writes every file.
func (w *FileWriter) Write(_ context.Context, report domain.Report) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	year := report.Query.Year
	files := []outputFile{
		{SegmentsFileName(year), func(out io.Writer) error { return w.format.WriteSegments(out, report.Segments) }},
		{PeriodsFileName(year), func(out io.Writer) error { return w.format.WritePeriods(out, report.Periods) }},
		{BreakdownFileName(year), func(out io.Writer) error { return w.format.WriteBreakdown(out, report.Breakdown) }},
		{RecordsFileName(year), func(out io.Writer) error { return w.format.WriteRecords(out, report.Records) }},
	}
	if w.xlsx {
		files = append(files, outputFile{WorkbookFileName(year), func(out io.Writer) error { return WriteXLSX(out, report) }})
	}

	for _, f := range files {
		path := filepath.Join(w.dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return err
		}
		slog.Info("export: file written", "path", path)
	}
	return nil
}

// writeFile writes through a temporary file and renames it into place.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
