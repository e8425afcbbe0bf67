package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
	"viewtube/infrastructure/logger"
)

// EnsureVideoStoreSchema creates the video_items table if not exists
func EnsureVideoStoreSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS video_items (
        id BIGINT PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        author TEXT NOT NULL,
        video_url TEXT NOT NULL DEFAULT '',
        thumbnail_url TEXT NOT NULL DEFAULT '',
        likes BIGINT NOT NULL DEFAULT 0,
        views BIGINT NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_items table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_video_items_created_at ON video_items(created_at, id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_video_items_created_at")
	}
	return nil
}

const videoColumns = `id, title, description, author, video_url, thumbnail_url, likes, views, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (model.VideoItem, error) {
	var v model.VideoItem
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Author, &v.VideoURL, &v.ThumbnailURL, &v.Likes, &v.Views, &v.CreatedAt)
	return v, err
}

// VideoStoreRepository is the PostgreSQL VideoStore
type VideoStoreRepository struct{ db *sql.DB }

func NewVideoStoreRepository(db *sql.DB) *VideoStoreRepository {
	return &VideoStoreRepository{db: db}
}

func (r *VideoStoreRepository) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	if r.db == nil {
		return model.VideoItem{}, apperror.New(apperror.CodeStorage, "postgres store not configured")
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM video_items WHERE id=$1`, id)
	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not in store", id))
		}
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeStorage, "get video")
	}
	return v, nil
}

// Put upserts; author, media references and creation date are never overwritten
func (r *VideoStoreRepository) Put(ctx context.Context, item model.VideoItem) error {
	if r.db == nil {
		return apperror.New(apperror.CodeStorage, "postgres store not configured")
	}
	q := `INSERT INTO video_items(id, title, description, author, video_url, thumbnail_url, likes, views, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
          ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description, likes=EXCLUDED.likes, views=EXCLUDED.views, updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, item.ID, item.Title, item.Description, item.Author, item.VideoURL, item.ThumbnailURL,
		item.Likes, item.Views, item.CreatedAt, time.Now().UTC())
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorage, "put video")
	}
	return nil
}

func (r *VideoStoreRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if r.db == nil {
		return false, apperror.New(apperror.CodeStorage, "postgres store not configured")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM video_items WHERE id=$1`, id)
	if err != nil {
		return false, apperror.Wrap(err, apperror.CodeStorage, "delete video")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.CodeStorage, "delete video")
	}
	return n > 0, nil
}

func (r *VideoStoreRepository) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	if r.db == nil {
		return nil, apperror.New(apperror.CodeStorage, "postgres store not configured")
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM video_items ORDER BY created_at, id`)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorage, "list videos")
	}
	defer rows.Close()
	out := make([]model.VideoItem, 0)
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorage, "scan video")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorage, "list videos")
	}
	return out, nil
}
