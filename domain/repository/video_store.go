package repository

import (
	"context"

	"viewtube/domain/model"
)

// IVideoStore is the durable cache of video items keyed by id.
// Every call persists before returning; I/O failures are reported as apperror.ErrStorage.
type IVideoStore interface {
	// Get returns apperror.ErrNotFound when the id is unknown.
	Get(ctx context.Context, id int64) (model.VideoItem, error)
	// Put inserts or overwrites the item by id.
	Put(ctx context.Context, item model.VideoItem) error
	// Delete reports whether a stored item was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// ListAll returns every stored item in store order.
	ListAll(ctx context.Context) ([]model.VideoItem, error)
}
