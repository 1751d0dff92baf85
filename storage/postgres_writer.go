package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/bmsujon/play-store-data-collector/models"
)

// PostgresWriter appends normalized app records to PostgreSQL. Each analysis
// adds the apps it saw; re-analyzed packages are skipped, not updated.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS analyzed_apps (
			id           SERIAL PRIMARY KEY,
			package_id   TEXT         UNIQUE NOT NULL,
			name         TEXT         NOT NULL,
			developer    TEXT,
			rating       NUMERIC(4,2),
			review_count BIGINT,
			installs     TEXT,
			price        NUMERIC(10,2),
			description  TEXT,
			source_url   TEXT         NOT NULL,
			analyzed_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_analyzed_apps_rating    ON analyzed_apps(rating);
		CREATE INDEX IF NOT EXISTS idx_analyzed_apps_developer ON analyzed_apps(developer);
	`)
	return err
}

// Write batch-inserts app records, skipping packages already recorded.
func (pw *PostgresWriter) Write(apps []*models.App) error {
	const batchSize = 50
	for i := 0; i < len(apps); i += batchSize {
		end := i + batchSize
		if end > len(apps) {
			end = len(apps)
		}
		if err := pw.insertBatch(apps[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.App) error {
	if len(batch) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*9)

	for idx, app := range batch {
		base := idx * 9
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))

		pkg := ""
		if app.PackageID != nil {
			pkg = *app.PackageID
		}
		valueArgs = append(valueArgs,
			pkg, app.Name, app.Developer, app.Rating, app.ReviewCount,
			app.Installs, app.Price, app.Description, app.SourceURL)
	}

	query := fmt.Sprintf(`
		INSERT INTO analyzed_apps
			(package_id, name, developer, rating, review_count, installs, price, description, source_url)
		VALUES %s
		ON CONFLICT (package_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
