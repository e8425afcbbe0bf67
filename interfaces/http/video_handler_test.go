package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"viewtube/domain/model"
	"viewtube/infrastructure/clients/viewtube"
	"viewtube/infrastructure/persistence"
	"viewtube/infrastructure/utils"
	httpHandler "viewtube/interfaces/http"
	"viewtube/interfaces/middleware"
	"viewtube/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

type fixture struct {
	router *gin.Engine
	engine usecase.IVideoSyncUsecase
	remote *viewtube.MemoryRemote
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	remote := viewtube.NewMemoryRemote(nil)
	remote.Seed(
		model.VideoItem{ID: 7, Title: "Sunset", Description: "timelapse", Author: "alice"},
		model.VideoItem{ID: 8, Title: "Harbor", Author: "bob"},
	)
	engine := usecase.NewVideoSyncUsecase(remote, persistence.NewMemoryVideoStore(), usecase.VideoSyncConfig{CallTimeout: time.Second})
	t.Cleanup(engine.Close)
	engine.FetchAllVideos()
	engine.Wait()

	h := httpHandler.NewVideoHandler(engine)
	r := gin.New()
	api := r.Group("/api")
	api.GET("/videos", h.ListVideos)
	api.GET("/videos/:id", h.GetVideo)
	api.GET("/selected", h.GetSelected)
	secured := api.Group("")
	secured.Use(middleware.Auth(testSecret))
	secured.POST("/videos", h.CreateVideo)
	secured.PATCH("/videos/:id", h.UpdateVideo)
	secured.DELETE("/videos/:id", h.DeleteVideo)
	secured.POST("/videos/:id/like", h.LikeVideo)
	secured.POST("/videos/:id/view", h.ViewVideo)
	secured.PUT("/selected/:id", h.SelectVideo)
	secured.DELETE("/selected", h.ClearSelected)
	return &fixture{router: r, engine: engine, remote: remote}
}

func (f *fixture) do(t *testing.T, method, path, user string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		token, err := utils.GenerateRequesterToken(user, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestVideoHandler_ListAndSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/videos?q=sun", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    []model.VideoItem `json:"data"`
		Total   int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, int64(7), body.Data[0].ID)
}

func TestVideoHandler_GetVideo(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/videos/7", "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/videos/99", "", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/videos/abc", "", nil, "").Code)
}

func TestVideoHandler_MutationsRequireToken(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodDelete, "/api/videos/7", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVideoHandler_CreateVideo(t *testing.T) {
	f := newFixture(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "Dunes"))
	require.NoError(t, mw.WriteField("description", "desert"))
	part, err := mw.CreateFormFile("video", "dunes.mp4")
	require.NoError(t, err)
	_, _ = part.Write([]byte("frames"))
	part, err = mw.CreateFormFile("thumbnail", "dunes.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte{0xff, 0xd8})
	require.NoError(t, mw.Close())

	w := f.do(t, http.MethodPost, "/api/videos", "carol", body, mw.FormDataContentType())
	require.Equal(t, http.StatusAccepted, w.Code)
	f.engine.Wait()

	found := f.engine.Search("dunes")
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Author)
	assert.Equal(t, int64(9), found[0].ID)
}

func TestVideoHandler_CreateVideoValidation(t *testing.T) {
	f := newFixture(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "No files"))
	require.NoError(t, mw.Close())

	w := f.do(t, http.MethodPost, "/api/videos", "carol", body, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandler_PartialUpdate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPatch, "/api/videos/7", "alice", bytes.NewBufferString(`{"title":"Dawn"}`), "application/json")
	require.Equal(t, http.StatusAccepted, w.Code)
	f.engine.Wait()

	item, err := f.engine.GetVideoItem(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Dawn", item.Title)
	assert.Equal(t, "timelapse", item.Description)

	w = f.do(t, http.MethodPatch, "/api/videos/7", "alice", bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandler_LikeViewDelete(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/videos/8/like", "alice", nil, "").Code)
	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/videos/8/view", "alice", nil, "").Code)
	f.engine.Wait()

	item, err := f.engine.GetVideoItem(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.Likes)
	assert.Equal(t, int64(1), item.Views)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodDelete, "/api/videos/8", "alice", nil, "").Code)
	f.engine.Wait()
	_, err = f.engine.GetVideoItem(context.Background(), 8)
	assert.NoError(t, err, "alice does not own video 8")

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodDelete, "/api/videos/8", "bob", nil, "").Code)
	f.engine.Wait()
	_, err = f.engine.GetVideoItem(context.Background(), 8)
	assert.Error(t, err)
}

func TestVideoHandler_Selection(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPut, "/api/selected/7", "alice", nil, "").Code)
	f.engine.Wait()

	w := f.do(t, http.MethodGet, "/api/selected", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"id":7`))

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/selected", "alice", nil, "").Code)
	assert.Nil(t, f.engine.Selected())
}
