package viewtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestRemoteClient_FetchAllPages(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/videos", r.URL.Path)
		pages = append(pages, r.URL.Query().Get("page"))
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": []model.VideoItem{{ID: 1}, {ID: 2}}, "total": 3})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": []model.VideoItem{{ID: 3}}, "total": 3})
		}
	}))
	defer srv.Close()

	client := NewRemoteClient(context.Background(), Config{BaseURL: srv.URL, Timeout: time.Second, PageSize: 2})
	items, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, pages)
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[2].ID)
}

func TestRemoteClient_CreateMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Sunset", r.FormValue("title"))
		assert.Equal(t, "alice", r.FormValue("author"))
		assert.Equal(t, "alice", r.Header.Get(RequesterHeader))

		f, hdr, err := r.FormFile("video")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "clip.mp4", hdr.Filename)
		assert.Equal(t, "video/mp4", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte("frames"), data)

		_, _, err = r.FormFile("thumbnail")
		require.NoError(t, err)

		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": model.VideoItem{ID: 7, Title: "Sunset", Author: "alice"}})
	}))
	defer srv.Close()

	client := NewRemoteClient(context.Background(), Config{BaseURL: srv.URL, Timeout: time.Second})
	created, err := client.Create(context.Background(),
		model.VideoItem{Title: "Sunset", Author: "alice"},
		model.MediaBlob{FileName: "clip.mp4", ContentType: "video/mp4", Data: []byte("frames")},
		model.MediaBlob{FileName: "thumb.jpg", ContentType: "image/jpeg", Data: []byte{0xff}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
}

func TestRemoteClient_UpdateLikeView(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "alice", r.Header.Get(RequesterHeader))
		var body updateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": model.VideoItem{ID: 7, Title: body.Title, Description: body.Description}})
	})
	mux.HandleFunc("/api/videos/7/likes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{"likes": 4})
	})
	mux.HandleFunc("/api/videos/7/views", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{"views": 11})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewRemoteClient(context.Background(), Config{BaseURL: srv.URL + "/", Timeout: time.Second})
	ctx := context.Background()

	updated, err := client.Update(ctx, 7, "alice", "New", "Desc")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Desc", updated.Description)

	likes, err := client.Like(ctx, 7, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(4), likes)

	views, err := client.IncrementView(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(11), views)
}

func TestRemoteClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"forbidden", http.StatusForbidden, apperror.ErrForbidden},
		{"not found", http.StatusNotFound, apperror.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, apperror.ErrUnavailable},
		{"service unavailable", http.StatusServiceUnavailable, apperror.ErrUnavailable},
		{"bad request", http.StatusBadRequest, apperror.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "nope"})
			}))
			defer srv.Close()

			client := NewRemoteClient(context.Background(), Config{BaseURL: srv.URL, Timeout: time.Second})
			err := client.Delete(context.Background(), 7, "bob")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestRemoteClient_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewRemoteClient(context.Background(), Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.IncrementView(context.Background(), 1)
	assert.ErrorIs(t, err, apperror.ErrUnreachable)
}

func TestRemoteClient_ConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewRemoteClient(context.Background(), Config{BaseURL: url, Timeout: time.Second})
	_, err := client.FetchAll(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUnreachable)
}
