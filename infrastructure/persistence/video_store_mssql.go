package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
)

// EnsureVideoStoreSchemaMSSQL creates the video_items table on MSSQL if not exists
func EnsureVideoStoreSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_items') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.video_items (
        id BIGINT NOT NULL PRIMARY KEY,
        title NVARCHAR(512) NOT NULL,
        description NVARCHAR(MAX) NOT NULL,
        author NVARCHAR(256) NOT NULL,
        video_url NVARCHAR(2048) NOT NULL,
        thumbnail_url NVARCHAR(2048) NOT NULL,
        likes BIGINT NOT NULL,
        views BIGINT NOT NULL,
        created_at DATETIMEOFFSET NOT NULL,
        updated_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create video_items table (mssql): %w", err)
	}
	return nil
}

// VideoStoreRepositoryMSSQL implements IVideoStore on SQL Server
type VideoStoreRepositoryMSSQL struct {
	db *sql.DB
}

func NewVideoStoreRepositoryMSSQL(db *sql.DB) *VideoStoreRepositoryMSSQL {
	return &VideoStoreRepositoryMSSQL{db: db}
}

func (r *VideoStoreRepositoryMSSQL) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	if r.db == nil {
		return model.VideoItem{}, apperror.New(apperror.CodeStorage, "mssql store not configured")
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM dbo.video_items WHERE id=@p1`, id)
	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not in store", id))
		}
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeStorage, "get video")
	}
	return v, nil
}

func (r *VideoStoreRepositoryMSSQL) Put(ctx context.Context, item model.VideoItem) error {
	if r.db == nil {
		return apperror.New(apperror.CodeStorage, "mssql store not configured")
	}
	q := `MERGE dbo.video_items AS target
USING (SELECT @p1 AS id) AS src
ON (target.id = src.id)
WHEN MATCHED THEN UPDATE SET title=@p2, description=@p3, likes=@p7, views=@p8, updated_at=@p10
WHEN NOT MATCHED THEN INSERT (id, title, description, author, video_url, thumbnail_url, likes, views, created_at, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10);`
	_, err := r.db.ExecContext(ctx, q, item.ID, item.Title, item.Description, item.Author, item.VideoURL, item.ThumbnailURL,
		item.Likes, item.Views, item.CreatedAt, time.Now().UTC())
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorage, "put video")
	}
	return nil
}

func (r *VideoStoreRepositoryMSSQL) Delete(ctx context.Context, id int64) (bool, error) {
	if r.db == nil {
		return false, apperror.New(apperror.CodeStorage, "mssql store not configured")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM dbo.video_items WHERE id=@p1`, id)
	if err != nil {
		return false, apperror.Wrap(err, apperror.CodeStorage, "delete video")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Wrap(err, apperror.CodeStorage, "delete video")
	}
	return n > 0, nil
}

func (r *VideoStoreRepositoryMSSQL) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	if r.db == nil {
		return nil, apperror.New(apperror.CodeStorage, "mssql store not configured")
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM dbo.video_items ORDER BY created_at, id`)
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
