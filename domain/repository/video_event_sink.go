package repository

import (
	"context"

	"viewtube/domain/model"
)

// IVideoEventSink forwards settled operation events to an external bus
type IVideoEventSink interface {
	Name() string
	PublishVideoEvent(ctx context.Context, event model.VideoEvent) error
}
