package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// videoRecord is the gorm row for a video item
type videoRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	Title        string    `gorm:"size:512;not null"`
	Description  string    `gorm:"type:text"`
	Author       string    `gorm:"size:256;not null"`
	VideoURL     string    `gorm:"size:2048"`
	ThumbnailURL string    `gorm:"size:2048"`
	Likes        int64     `gorm:"not null;default:0"`
	Views        int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"index:idx_video_items_created_at"`
	UpdatedAt    time.Time
}

func (videoRecord) TableName() string { return "video_items" }

func toVideoRecord(v model.VideoItem) videoRecord {
	return videoRecord{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Author:       v.Author,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Likes:        v.Likes,
		Views:        v.Views,
		CreatedAt:    v.CreatedAt,
	}
}

func (r videoRecord) toModel() model.VideoItem {
	return model.VideoItem{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Author:       r.Author,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		Likes:        r.Likes,
		Views:        r.Views,
		CreatedAt:    r.CreatedAt,
	}
}

// EnsureVideoStoreSchemaGorm migrates the video_items table
func EnsureVideoStoreSchemaGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&videoRecord{}); err != nil {
		return fmt.Errorf("migrate video_items (gorm): %w", err)
	}
	return nil
}

// VideoStoreGorm implements IVideoStore on MySQL through gorm
type VideoStoreGorm struct {
	db *gorm.DB
}

func NewVideoStoreGorm(db *gorm.DB) *VideoStoreGorm {
	return &VideoStoreGorm{db: db}
}

func (r *VideoStoreGorm) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	var rec videoRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not in store", id))
		}
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeStorage, "get video")
	}
	return rec.toModel(), nil
}

func (r *VideoStoreGorm) Put(ctx context.Context, item model.VideoItem) error {
	rec := toVideoRecord(item)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "likes", "views", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorage, "put video")
	}
	return nil
}

func (r *VideoStoreGorm) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&videoRecord{}, id)
	if res.Error != nil {
		return false, apperror.Wrap(res.Error, apperror.CodeStorage, "delete video")
	}
	return res.RowsAffected > 0, nil
}

func (r *VideoStoreGorm) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	var recs []videoRecord
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorage, "list videos")
	}
	out := make([]model.VideoItem, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}
