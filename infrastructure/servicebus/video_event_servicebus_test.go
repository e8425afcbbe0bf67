package servicebus_test

import (
	"context"
	"testing"

	"viewtube/domain/model"
	"viewtube/infrastructure/servicebus"

	"github.com/stretchr/testify/assert"
)

func TestNewVideoEventServiceBus(t *testing.T) {
	sink := servicebus.NewVideoEventServiceBus(nil, "video-events")
	assert.NotNil(t, sink)
	assert.Equal(t, "servicebus:video-events", sink.Name())
}

func TestVideoEventServiceBus_NilClient(t *testing.T) {
	sink := servicebus.NewVideoEventServiceBus(nil, "video-events")
	err := sink.PublishVideoEvent(context.Background(), model.VideoEvent{ID: "1"})
	assert.Error(t, err)
}
