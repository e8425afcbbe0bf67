package pubsub_test

import (
	"context"
	"testing"

	"viewtube/domain/model"
	"viewtube/infrastructure/pubsub"

	"github.com/stretchr/testify/assert"
)

func TestNewVideoEventPubSub(t *testing.T) {
	sink := pubsub.NewVideoEventPubSub(nil, "video-events")
	assert.NotNil(t, sink)
	assert.Equal(t, "pubsub:video-events", sink.Name())
}

func TestVideoEventPubSub_NilClient(t *testing.T) {
	sink := pubsub.NewVideoEventPubSub(nil, "video-events")
	err := sink.PublishVideoEvent(context.Background(), model.VideoEvent{ID: "1", Type: model.VideoEventCreated})
	assert.Error(t, err)
}
