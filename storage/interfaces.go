package storage

import "github.com/bmsujon/play-store-data-collector/models"

// RawAppWriter persists unprocessed scraped records. Sinks are write-only
// audit trails: nothing in the request path ever reads them back.
type RawAppWriter interface {
	WriteRaw(apps []*models.RawApp) error
	Close() error
}

// AppWriter persists normalized app records.
type AppWriter interface {
	Write(apps []*models.App) error
	Close() error
}
