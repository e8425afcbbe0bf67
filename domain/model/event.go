package model

import "time"

// VideoEventType names the outcome of a sync operation
type VideoEventType string

const (
	VideoEventSynced       VideoEventType = "video.synced"
	VideoEventSyncFallback VideoEventType = "video.sync_fallback"
	VideoEventCreated      VideoEventType = "video.created"
	VideoEventUpdated      VideoEventType = "video.updated"
	VideoEventDeleted      VideoEventType = "video.deleted"
	VideoEventLiked        VideoEventType = "video.liked"
	VideoEventViewed       VideoEventType = "video.viewed"
	VideoEventFailed       VideoEventType = "video.failed"
)

// VideoEvent is published after every asynchronous operation settles.
// Operation holds the engine operation name (add, update, delete, like, ...).
type VideoEvent struct {
	ID         string         `json:"id"`
	Type       VideoEventType `json:"type"`
	Operation  string         `json:"operation"`
	VideoID    int64          `json:"video_id,omitempty"`
	Requester  string         `json:"requester,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorCode  string         `json:"error_code,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
