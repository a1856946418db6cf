package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"pasteapi/internal/database"
	"pasteapi/internal/model"
	"pasteapi/internal/repository"
)

const pasteColumns = `id, pub_date, chg_date, paste_id, removal_id, lexer, raw, fmt, src, exp_date`

// PastePostgres is a PostgreSQL implementation of repository.PasteRepository.
type PastePostgres struct {
	db *sql.DB
}

// NewPastePostgres creates a new PastePostgres repository on an owned handle.
func NewPastePostgres(db *sql.DB) *PastePostgres {
	return &PastePostgres{db: db}
}

var _ repository.PasteRepository = (*PastePostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaste(row rowScanner) (*model.Paste, error) {
	var (
		p   model.Paste
		exp sql.NullTime
	)
	if err := row.Scan(
		&p.ID,
		&p.PubDate,
		&p.ChgDate,
		&p.PasteID,
		&p.RemovalID,
		&p.Lexer,
		&p.Raw,
		&p.Fmt,
		&p.Src,
		&exp,
	); err != nil {
		return nil, err
	}
	if exp.Valid {
		t := exp.Time
		p.ExpDate = &t
	}
	return &p, nil
}

// Create inserts the paste in its own transaction. A unique violation on
// either identifier is reported as repository.ErrDuplicateID.
func (r *PastePostgres) Create(ctx context.Context, p *model.Paste) (*model.Paste, error) {
	const q = `
		INSERT INTO paste (pub_date, chg_date, paste_id, removal_id, lexer, raw, fmt, src, exp_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + pasteColumns

	var exp sql.NullTime
	if p.ExpDate != nil {
		exp = sql.NullTime{Time: *p.ExpDate, Valid: true}
	}

	var out *model.Paste
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, q,
			p.PubDate,
			p.ChgDate,
			p.PasteID,
			p.RemovalID,
			p.Lexer,
			p.Raw,
			p.Fmt,
			p.Src,
			exp,
		)
		stored, err := scanPaste(row)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.Wrapf(repository.ErrDuplicateID, "insert paste %s", p.PasteID)
		}
		return nil, errors.Wrap(err, "insert paste")
	}
	return out, nil
}

// FindByPasteID fetches a single paste by its public identifier.
func (r *PastePostgres) FindByPasteID(ctx context.Context, pasteID string) (*model.Paste, error) {
	const q = `SELECT ` + pasteColumns + ` FROM paste WHERE paste_id = $1`
	return scanPaste(r.db.QueryRowContext(ctx, q, pasteID))
}

// FindByRemovalID fetches a single paste by its removal identifier.
func (r *PastePostgres) FindByRemovalID(ctx context.Context, removalID string) (*model.Paste, error) {
	const q = `SELECT ` + pasteColumns + ` FROM paste WHERE removal_id = $1`
	return scanPaste(r.db.QueryRowContext(ctx, q, removalID))
}

// DeleteByRemovalID removes the paste holding removalID.
func (r *PastePostgres) DeleteByRemovalID(ctx context.Context, removalID string) (string, error) {
	const q = `DELETE FROM paste WHERE removal_id = $1 RETURNING paste_id`

	var pasteID string
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, q, removalID).Scan(&pasteID)
	})
	if err != nil {
		return "", err
	}
	return pasteID, nil
}

// DeleteExpired removes every paste whose exp_date has passed.
func (r *PastePostgres) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	const q = `DELETE FROM paste WHERE exp_date IS NOT NULL AND exp_date <= $1 RETURNING paste_id`

	removed := make([]string, 0)
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, q, now)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			removed = append(removed, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, "delete expired pastes")
	}
	return removed, nil
}
