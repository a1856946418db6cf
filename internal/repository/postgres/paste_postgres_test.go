package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasteapi/internal/model"
	"pasteapi/internal/repository"
)

var columns = []string{"id", "pub_date", "chg_date", "paste_id", "removal_id", "lexer", "raw", "fmt", "src", "exp_date"}

func newPaste(exp *time.Time) *model.Paste {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &model.Paste{
		PasteID:   "Ab3_",
		RemovalID: "x-9Z",
		Lexer:     "python",
		Raw:       "print('hi')",
		Fmt:       `<div class="source">print</div>`,
		Src:       "web",
		PubDate:   now,
		ChgDate:   now,
		ExpDate:   exp,
	}
}

func TestPastePostgres_Create(t *testing.T) {
	ctx := context.Background()
	exp := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

	t.Run("success with expiry", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		p := newPaste(&exp)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO paste").
			WithArgs(p.PubDate, p.ChgDate, p.PasteID, p.RemovalID, p.Lexer, p.Raw, p.Fmt, p.Src, exp).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(int64(42), p.PubDate, p.ChgDate, p.PasteID, p.RemovalID, p.Lexer, p.Raw, p.Fmt, p.Src, exp))
		mock.ExpectCommit()

		out, err := NewPastePostgres(db).Create(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, int64(42), out.ID)
		assert.Equal(t, p.PasteID, out.PasteID)
		require.NotNil(t, out.ExpDate)
		assert.True(t, exp.Equal(*out.ExpDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success without expiry", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		p := newPaste(nil)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO paste").
			WithArgs(p.PubDate, p.ChgDate, p.PasteID, p.RemovalID, p.Lexer, p.Raw, p.Fmt, p.Src, nil).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(int64(7), p.PubDate, p.ChgDate, p.PasteID, p.RemovalID, p.Lexer, p.Raw, p.Fmt, p.Src, nil))
		mock.ExpectCommit()

		out, err := NewPastePostgres(db).Create(ctx, p)
		require.NoError(t, err)
		assert.Nil(t, out.ExpDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicateID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO paste").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "paste_paste_id_key"})
		mock.ExpectRollback()

		out, err := NewPastePostgres(db).Create(ctx, newPaste(nil))
		assert.ErrorIs(t, err, repository.ErrDuplicateID)
		assert.Contains(t, err.Error(), "insert paste Ab3_")
		assert.Nil(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors roll back and wrap", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO paste").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		out, err := NewPastePostgres(db).Create(ctx, newPaste(nil))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicateID)
		assert.Contains(t, err.Error(), "insert paste: connection reset")
		assert.Nil(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPastePostgres_FindByPasteID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPastePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM paste WHERE paste_id = ?").
			WithArgs("Ab3_").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(int64(1), now, now, "Ab3_", "x-9Z", "text", "hello", "<div/>", "web", nil))

		p, err := repo.FindByPasteID(ctx, "Ab3_")
		require.NoError(t, err)
		assert.Equal(t, "Ab3_", p.PasteID)
		assert.Equal(t, "x-9Z", p.RemovalID)
		assert.Nil(t, p.ExpDate)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM paste WHERE paste_id = ?").
			WithArgs("none").
			WillReturnError(sql.ErrNoRows)

		p, err := repo.FindByPasteID(ctx, "none")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPastePostgres_FindByRemovalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	exp := now.Add(time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM paste WHERE removal_id = ?").
		WithArgs("x-9Z").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), now, now, "Ab3_", "x-9Z", "text", "hello", "<div/>", "web", exp))

	p, err := NewPastePostgres(db).FindByRemovalID(context.Background(), "x-9Z")
	require.NoError(t, err)
	assert.Equal(t, "Ab3_", p.PasteID)
	require.NotNil(t, p.ExpDate)
	assert.True(t, exp.Equal(*p.ExpDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPastePostgres_DeleteByRemovalID(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM paste WHERE removal_id = ?").
			WithArgs("x-9Z").
			WillReturnRows(sqlmock.NewRows([]string{"paste_id"}).AddRow("Ab3_"))
		mock.ExpectCommit()

		pasteID, err := NewPastePostgres(db).DeleteByRemovalID(ctx, "x-9Z")
		require.NoError(t, err)
		assert.Equal(t, "Ab3_", pasteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM paste WHERE removal_id = ?").
			WithArgs("none").
			WillReturnRows(sqlmock.NewRows([]string{"paste_id"}))
		mock.ExpectRollback()

		pasteID, err := NewPastePostgres(db).DeleteByRemovalID(ctx, "none")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Empty(t, pasteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPastePostgres_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

	t.Run("returns removed ids", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM paste WHERE exp_date IS NOT NULL AND exp_date <= ?").
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"paste_id"}).AddRow("aaaa").AddRow("bbbb"))
		mock.ExpectCommit()

		ids, err := NewPastePostgres(db).DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"aaaa", "bbbb"}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing expired", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM paste WHERE exp_date").
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"paste_id"}))
		mock.ExpectCommit()

		ids, err := NewPastePostgres(db).DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("DELETE FROM paste WHERE exp_date").
			WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		ids, err := NewPastePostgres(db).DeleteExpired(ctx, now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delete expired pastes: lock timeout")
		assert.Nil(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
