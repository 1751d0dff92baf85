package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmsujon/play-store-data-collector/models"
)

// CSVWriter appends raw scraped app records to a CSV file, one row per app
// per analysis. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"package_id", "title", "developer", "rating", "reviews", "installs",
		"price", "screenshots", "source_url", "scraped_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends the given raw records.
func (c *CSVWriter) WriteRaw(apps []*models.RawApp) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range apps {
		row := []string{
			a.PackageID,
			a.Title,
			a.Developer,
			a.RawRating,
			a.RawReviews,
			a.RawInstalls,
			a.RawPrice,
			strings.Join(a.Screenshots, " "),
			a.SourceURL,
			a.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
