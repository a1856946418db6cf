package repository

import (
	"context"
	"errors"
	"time"

	"pasteapi/internal/model"
)

// ErrDuplicateID is returned by Create when paste_id or removal_id is already taken.
var ErrDuplicateID = errors.New("paste identifier already exists")

// PasteRepository defines data access for pastes using SQL queries only.
// Lookups that match no row return sql.ErrNoRows.
type PasteRepository interface {
	// Create inserts a fully constructed paste inside a single transaction and
	// returns it with the storage-assigned ID set.
	Create(ctx context.Context, p *model.Paste) (*model.Paste, error)

	// FindByPasteID returns the paste with the given public identifier.
	FindByPasteID(ctx context.Context, pasteID string) (*model.Paste, error)

	// FindByRemovalID returns the paste with the given removal identifier.
	FindByRemovalID(ctx context.Context, removalID string) (*model.Paste, error)

	// DeleteByRemovalID deletes the paste holding removalID and returns its paste_id.
	DeleteByRemovalID(ctx context.Context, removalID string) (string, error)

	// DeleteExpired removes pastes whose exp_date is at or before now and
	// returns the paste_ids removed.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}
