package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionColumns = []string{
	"id", "learner_id", "kind", "started_at", "last_activity_at",
	"ended_at", "items_reviewed", "items_correct", "duration_seconds",
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

func TestDBRepository_Create(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	repo, mock := newMockRepository(t)
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(int64(1), "review", now, now).
		WillReturnResult(sqlmock.NewResult(9, 1))

	s := &Session{LearnerID: 1, Kind: KindReview, StartedAt: now, LastActivityAt: now}
	err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_Find(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "returns the session",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(sessionColumns).
					AddRow(9, 1, "review", now, now, nil, 3, 2, nil)
				mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
					WithArgs(int64(9)).
					WillReturnRows(rows)
			},
		},
		{
			name: "unknown id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM sessions WHERE id = \\?").
					WithArgs(int64(9)).
					WillReturnRows(sqlmock.NewRows(sessionColumns))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.Find(context.Background(), 9)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, KindReview, got.Kind)
			assert.Equal(t, 3, got.ItemsReviewed)
			assert.Nil(t, got.EndedAt)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindOpenByLearner(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns the open session", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		rows := sqlmock.NewRows(sessionColumns).
			AddRow(9, 1, "review", now, now, nil, 0, 0, nil)
		mock.ExpectQuery("SELECT \\* FROM sessions").
			WithArgs(int64(1), "review").
			WillReturnRows(rows)

		got, err := repo.FindOpenByLearner(context.Background(), 1, KindReview)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(9), got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no open session returns nil without error", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT \\* FROM sessions").
			WithArgs(int64(1), "review").
			WillReturnRows(sqlmock.NewRows(sessionColumns))

		got, err := repo.FindOpenByLearner(context.Background(), 1, KindReview)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBRepository_AddReview(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		correct   bool
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:    "correct review bumps both counters",
			correct: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sessions").
					WithArgs(1, now, int64(9)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "incorrect review bumps only the reviewed counter",
			correct: false,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sessions").
					WithArgs(0, now, int64(9)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "closed session",
			correct: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sessions").
					WithArgs(1, now, int64(9)).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrClosed,
		},
		{
			name:    "db error",
			correct: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE sessions").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: fmt.Errorf("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			err := repo.AddReview(context.Background(), 9, tt.correct, now)
			if tt.wantErr != nil {
				require.Error(t, err)
				if tt.wantErr == ErrClosed {
					assert.ErrorIs(t, err, ErrClosed)
				}
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Close(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("closes an open session", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("UPDATE sessions").
			WithArgs(now, int64(125), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Close(context.Background(), 9, now, 125)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("closing twice returns ErrClosed", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec("UPDATE sessions").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Close(context.Background(), 9, now, 125)
		assert.ErrorIs(t, err, ErrClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
