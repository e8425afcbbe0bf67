package realtime

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"viewtube/domain/model"
)

type stubFeed struct {
	videos   *Hub[[]model.VideoItem]
	selected *Hub[*model.VideoItem]
	events   chan model.VideoEvent
}

func (f *stubFeed) SubscribeVideos() *Subscription[[]model.VideoItem] { return f.videos.Subscribe() }

func (f *stubFeed) SubscribeSelected() *Subscription[*model.VideoItem] {
	return f.selected.Subscribe()
}

func (f *stubFeed) SubscribeEvents() (<-chan model.VideoEvent, func()) {
	return f.events, func() {}
}

func TestVideoStream_WritesEventsUntilFeedCloses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	feed := &stubFeed{
		videos:   NewHub[[]model.VideoItem](),
		selected: NewHub[*model.VideoItem](),
		events:   make(chan model.VideoEvent, 1),
	}
	feed.events <- model.VideoEvent{ID: "evt-1", Type: model.VideoEventCreated, VideoID: 7}
	close(feed.events)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/stream", nil)

	NewVideoStream(feed).Serve(c)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, ":ok\n\n")
	assert.Contains(t, body, "event: video_event\n")
	assert.Contains(t, body, `"id":"evt-1"`)
	assert.Contains(t, body, `"type":"video.created"`)
}
