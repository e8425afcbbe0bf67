package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"viewtube/domain/model"
)

// VideoFeed is the observable side of the sync engine.
type VideoFeed interface {
	SubscribeVideos() *Subscription[[]model.VideoItem]
	SubscribeSelected() *Subscription[*model.VideoItem]
	SubscribeEvents() (<-chan model.VideoEvent, func())
}

// VideoStream serves the feeds as server-sent events.
type VideoStream struct {
	feed VideoFeed
}

func NewVideoStream(feed VideoFeed) *VideoStream {
	return &VideoStream{feed: feed}
}

// Serve streams "videos", "selected" and "video_event" events until the client goes away.
func (s *VideoStream) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering
	c.Status(http.StatusOK)

	videos := s.feed.SubscribeVideos()
	defer videos.Close()
	selected := s.feed.SubscribeSelected()
	defer selected.Close()
	events, cancel := s.feed.SubscribeEvents()
	defer cancel()

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case items, ok := <-videos.C():
			if !ok {
				return
			}
			writeEvent(c, "videos", items)
		case item, ok := <-selected.C():
			if !ok {
				return
			}
			writeEvent(c, "selected", item)
		case evt, ok := <-events:
			if !ok {
				return
			}
			writeEvent(c, "video_event", evt)
		}
	}
}

func writeEvent(c *gin.Context, name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = c.Writer.Write([]byte("event: " + name + "\n"))
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
