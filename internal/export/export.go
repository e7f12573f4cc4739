package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"horse.fit/matwatch/internal/pipeline"
)

const (
	publishedLayout = "2006-01-02 15:04:05"
	sheetName       = "News"
)

var header = []string{"Material", "QueryVariant", "Source", "Title", "Summary", "URL", "Published", "Relevance"}

// Writer materializes run results as CSV and XLSX files under a fixed output
// directory, one pair per run day.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileStamp derives the per-day basename for a run's exports.
func FileStamp(runStart time.Time) string {
	return "news_" + runStart.Format("2006-01-02")
}

// WriteCSV writes the record set as UTF-8 CSV and returns the file path.
func (w *Writer) WriteCSV(records []pipeline.Record, runStart time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, FileStamp(runStart)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Material,
			rec.QueryVariant,
			rec.Source,
			rec.Title,
			rec.Summary,
			rec.URL,
			rec.Published.Format(publishedLayout),
			strconv.Itoa(rec.Relevance),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

// WriteXLSX writes the record set as a single-sheet workbook and returns the
// file path. Relevance lands as a numeric cell so the sheet sorts correctly.
func (w *Writer) WriteXLSX(records []pipeline.Record, runStart time.Time) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return "", fmt.Errorf("write header row: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("row coordinates: %w", err)
		}
		row := []interface{}{
			rec.Material,
			rec.QueryVariant,
			rec.Source,
			rec.Title,
			rec.Summary,
			rec.URL,
			rec.Published.Format(publishedLayout),
			rec.Relevance,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(w.dir, FileStamp(runStart)+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
