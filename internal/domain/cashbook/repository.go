package cashbook

import "context"

// EntryRepository persists cash book lines
type EntryRepository interface {
	Save(ctx context.Context, entry *Entry) error
	// FindAll returns every line oldest first
	FindAll(ctx context.Context) ([]Entry, error)
}
