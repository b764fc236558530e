package item

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
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantID    int64
		wantErr   bool
	}{
		{
			name: "inserts and sets the generated id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO items").
					WithArgs("deck/intro/card-1", 0.5).
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO items").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			it := &Item{ContentRef: "deck/intro/card-1", PredictedDifficulty: 0.5}
			err := repo.Create(context.Background(), it)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, it.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Find(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      *Item
		wantErr   error
	}{
		{
			name: "returns the item",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "content_ref", "predicted_difficulty", "created_at", "updated_at"}).
					AddRow(1, "deck/intro/card-1", 0.7, now, now)
				mock.ExpectQuery("SELECT \\* FROM items WHERE id = \\?").
					WithArgs(int64(1)).
					WillReturnRows(rows)
			},
			want: &Item{ID: 1, ContentRef: "deck/intro/card-1", PredictedDifficulty: 0.7, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "unknown id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM items WHERE id = \\?").
					WithArgs(int64(99)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			id := int64(1)
			if tt.wantErr != nil {
				id = 99
			}
			got, err := repo.Find(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Exists(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      bool
	}{
		{
			name: "existing item",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM items WHERE id = \\?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			},
			want: true,
		},
		{
			name: "missing item",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM items WHERE id = \\?").
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.setupMock(mock)

			got, err := repo.Exists(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_FindByIDs(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty ids short-circuits", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		got, err := repo.FindByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expands the in clause", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		rows := sqlmock.NewRows([]string{"id", "content_ref", "predicted_difficulty", "created_at", "updated_at"}).
			AddRow(1, "deck/intro/card-1", 0.5, now, now).
			AddRow(3, "deck/intro/card-3", 0.8, now, now)
		mock.ExpectQuery("SELECT \\* FROM items WHERE id IN \\(\\?, \\?\\) ORDER BY id").
			WithArgs(int64(1), int64(3)).
			WillReturnRows(rows)

		got, err := repo.FindByIDs(context.Background(), []int64{1, 3})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
