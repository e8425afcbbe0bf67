package model

import "time"

// VideoItem represents a single video in the browsing collection
type VideoItem struct {
	ID           int64     `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	Author       string    `json:"author" bson:"author"`
	VideoURL     string    `json:"video_url" bson:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url" bson:"thumbnail_url"`
	Likes        int64     `json:"likes" bson:"likes"`
	Views        int64     `json:"views" bson:"views"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// MediaBlob carries the raw bytes of an uploaded video or thumbnail
type MediaBlob struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// CloneVideos returns a copy of the slice so callers never alias the live collection.
func CloneVideos(items []VideoItem) []VideoItem {
	out := make([]VideoItem, len(items))
	copy(out, items)
	return out
}
