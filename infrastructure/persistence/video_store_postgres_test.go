package persistence

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var videoRowColumns = []string{"id", "title", "description", "author", "video_url", "thumbnail_url", "likes", "views", "created_at"}

func sampleVideo() model.VideoItem {
	return model.VideoItem{
		ID:           7,
		Title:        "Sunset",
		Description:  "timelapse",
		Author:       "alice",
		VideoURL:     "https://cdn.example.com/7.mp4",
		ThumbnailURL: "https://cdn.example.com/7.jpg",
		Likes:        3,
		Views:        10,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestVideoStoreRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	v := sampleVideo()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + videoColumns + ` FROM video_items WHERE id=$1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(v.ID, v.Title, v.Description, v.Author, v.VideoURL, v.ThumbnailURL, v.Likes, v.Views, v.CreatedAt))

	repo := NewVideoStoreRepository(db)
	got, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoStoreRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM video_items WHERE id=$1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	repo := NewVideoStoreRepository(db)
	_, err = repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoStoreRepository_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	v := sampleVideo()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO video_items`)).
		WithArgs(v.ID, v.Title, v.Description, v.Author, v.VideoURL, v.ThumbnailURL, v.Likes, v.Views, v.CreatedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewVideoStoreRepository(db)
	require.NoError(t, repo.Put(context.Background(), v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoStoreRepository_PutStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO video_items`)).
		WillReturnError(errors.New("disk full"))

	repo := NewVideoStoreRepository(db)
	err = repo.Put(context.Background(), sampleVideo())
	assert.ErrorIs(t, err, apperror.ErrStorage)
	assert.Contains(t, err.Error(), "disk full")
}

func TestVideoStoreRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM video_items WHERE id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM video_items WHERE id=$1`)).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewVideoStoreRepository(db)
	removed, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoStoreRepository_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	a := sampleVideo()
	b := sampleVideo()
	b.ID = 8
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM video_items ORDER BY created_at, id`)).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(a.ID, a.Title, a.Description, a.Author, a.VideoURL, a.ThumbnailURL, a.Likes, a.Views, a.CreatedAt).
			AddRow(b.ID, b.Title, b.Description, b.Author, b.VideoURL, b.ThumbnailURL, b.Likes, b.Views, b.CreatedAt))

	repo := NewVideoStoreRepository(db)
	got, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.VideoItem{a, b}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoStoreRepository_NilDB(t *testing.T) {
	repo := NewVideoStoreRepository(nil)
	_, err := repo.ListAll(context.Background())
	assert.ErrorIs(t, err, apperror.ErrStorage)
}

func TestVideoStoreRepositoryMSSQL_GetAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	v := sampleVideo()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM dbo.video_items WHERE id=@p1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(v.ID, v.Title, v.Description, v.Author, v.VideoURL, v.ThumbnailURL, v.Likes, v.Views, v.CreatedAt))
	mock.ExpectExec(regexp.QuoteMeta(`MERGE dbo.video_items`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM dbo.video_items WHERE id=@p1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewVideoStoreRepositoryMSSQL(db)
	got, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	require.NoError(t, repo.Put(context.Background(), got))

	removed, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
