package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/infmoney/omegahubsite/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// The counter mutations must run their arithmetic inside the database, not
// read-modify-write in Go. These tests pin the statements actually issued.

func TestRecordViewIssuesInDatabaseIncrement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "views"=views + 1 WHERE id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordView(ctx, 7)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordViewUnknownPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "views"=views + 1 WHERE id = $1`)).
		WithArgs(9999).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.RecordView(ctx, 9999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFavoriteReturnsNewTotalFromSameStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET favorites = favorites + 1 WHERE id = $1 RETURNING favorites`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"favorites"}).AddRow(5))

	total, err := repo.RecordFavorite(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFavoriteUnknownPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE posts SET favorites = favorites + 1 WHERE id = $1 RETURNING favorites`)).
		WithArgs(9999).
		WillReturnRows(sqlmock.NewRows([]string{"favorites"}))

	_, err := repo.RecordFavorite(ctx, 9999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsNamesOnlyGivenColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	// An edit must never restate counter columns; only the edited
	// columns and the update timestamp appear in the statement.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "title"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs("edited", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateFields(ctx, 7, map[string]interface{}{"title": "edited"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
