package progress

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var progressColumns = []string{
	"id", "item_id", "learner_id", "repetitions", "ease_factor", "interval_days",
	"last_reviewed_at", "next_review_at", "total_reviews", "correct_reviews",
	"streak", "version", "created_at", "updated_at",
}

func newMockRepository(t *testing.T) (*DBRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewDBRepository(sqlx.NewDb(db, "mysql")), mock
}

func progressRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(progressColumns).
		AddRow(1, 10, 1, 2, 2.46, 6, now, now.AddDate(0, 0, 6), 2, 2, 2, 3, now, now)
}

func TestDBRepository_Find(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantNil   bool
		wantErr   bool
	}{
		{
			name: "returns the record",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM progress WHERE item_id = \\? AND learner_id = \\?").
					WithArgs(int64(10), int64(1)).
					WillReturnRows(progressRow(now))
			},
		},
		{
			name: "no record returns nil without error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM progress WHERE item_id = \\? AND learner_id = \\?").
					WithArgs(int64(10), int64(1)).
					WillReturnRows(sqlmock.NewRows(progressColumns))
			},
			wantNil: true,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM progress WHERE item_id = \\? AND learner_id = \\?").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.Find(context.Background(), 10, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, int64(10), got.ItemID)
			assert.Equal(t, 2.46, got.EaseFactor)
			assert.Equal(t, int64(3), got.Version)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_GetOrCreate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns the existing record", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT \\* FROM progress").
			WillReturnRows(progressRow(now))

		got, err := repo.GetOrCreate(context.Background(), 10, 1, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates a record with defaults when absent", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT \\* FROM progress").
			WillReturnRows(sqlmock.NewRows(progressColumns))
		mock.ExpectExec("INSERT INTO progress").
			WithArgs(int64(10), int64(1), 0, 2.5, 0, now).
			WillReturnResult(sqlmock.NewResult(7, 1))

		got, err := repo.GetOrCreate(context.Background(), 10, 1, now)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, 2.5, got.EaseFactor)
		assert.Equal(t, now, got.NextReviewAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate key race re-reads the winner", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT \\* FROM progress").
			WillReturnRows(sqlmock.NewRows(progressColumns))
		mock.ExpectExec("INSERT INTO progress").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectQuery("SELECT \\* FROM progress").
			WillReturnRows(progressRow(now))

		got, err := repo.GetOrCreate(context.Background(), 10, 1, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBRepository_FindDue(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT \\* FROM progress WHERE learner_id = \\? AND next_review_at <= \\? ORDER BY item_id").
		WithArgs(int64(1), now).
		WillReturnRows(progressRow(now))

	got, err := repo.FindDue(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].ItemID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_UpdateVersioned(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	record := func() *Progress {
		p := New(10, 1, now)
		p.ID = 1
		p.Version = 3
		return p
	}

	t.Run("bumps the version on success", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("UPDATE progress").
			WillReturnResult(sqlmock.NewResult(0, 1))

		p := record()
		err := repo.UpdateVersioned(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, int64(4), p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version returns ErrVersionConflict", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("UPDATE progress").
			WillReturnResult(sqlmock.NewResult(0, 0))

		p := record()
		err := repo.UpdateVersioned(context.Background(), p)
		assert.ErrorIs(t, err, ErrVersionConflict)
		assert.Equal(t, int64(3), p.Version, "version unchanged after a lost write")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
