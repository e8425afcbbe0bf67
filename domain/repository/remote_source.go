package repository

import (
	"context"

	"viewtube/domain/model"
)

// IRemoteSource is the external authority for video items.
// Errors are apperror codes: UNREACHABLE, FORBIDDEN, NOT_FOUND, UNAVAILABLE.
type IRemoteSource interface {
	FetchAll(ctx context.Context) ([]model.VideoItem, error)
	// Create uploads the media and returns the item with its remote-assigned id.
	Create(ctx context.Context, item model.VideoItem, media, thumbnail model.MediaBlob) (model.VideoItem, error)
	Update(ctx context.Context, id int64, requester, title, description string) (model.VideoItem, error)
	Delete(ctx context.Context, id int64, requester string) error
	// Like is idempotent per (id, requester) and returns the authoritative like count.
	Like(ctx context.Context, id int64, requester string) (int64, error)
	// IncrementView counts every call and returns the authoritative view count.
	IncrementView(ctx context.Context, id int64) (int64, error)
}
