package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"viewtube/domain/apperror"
	"viewtube/domain/dto"
	"viewtube/domain/model"
	"viewtube/interfaces/middleware"
	"viewtube/usecase"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds a single multipart upload held in memory
const maxUploadBytes = 64 << 20

// IVideoHandler defines the HTTP handlers over the video sync engine
type IVideoHandler interface {
	ListVideos(ctx *gin.Context)
	GetVideo(ctx *gin.Context)
	CreateVideo(ctx *gin.Context)
	UpdateVideo(ctx *gin.Context)
	DeleteVideo(ctx *gin.Context)
	LikeVideo(ctx *gin.Context)
	ViewVideo(ctx *gin.Context)
	Reload(ctx *gin.Context)

	GetSelected(ctx *gin.Context)
	SelectVideo(ctx *gin.Context)
	ClearSelected(ctx *gin.Context)
}

type VideoHandler struct {
	videoSync usecase.IVideoSyncUsecase
}

func NewVideoHandler(videoSync usecase.IVideoSyncUsecase) IVideoHandler {
	return &VideoHandler{videoSync: videoSync}
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Video ID must be a positive integer"})
		return 0, false
	}
	return id, true
}

func accepted(ctx *gin.Context, operation string, id int64) {
	ctx.JSON(http.StatusAccepted, dto.AcceptedResponse{
		Success:   true,
		Operation: operation,
		VideoID:   id,
		Message:   "accepted; follow /api/stream for the outcome",
	})
}

// ListVideos handles GET /api/videos?q=
func (h *VideoHandler) ListVideos(ctx *gin.Context) {
	q := ctx.Query("q")
	items := h.videoSync.Search(q)
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   len(items),
		"query":   q,
	})
}

// GetVideo handles GET /api/videos/:id
func (h *VideoHandler) GetVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	item, err := h.videoSync.GetVideoItem(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, "Failed to get video", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": item})
}

// CreateVideo handles POST /api/videos (multipart: title, description, video, thumbnail)
func (h *VideoHandler) CreateVideo(ctx *gin.Context) {
	title := ctx.PostForm("title")
	if title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	media, err := readBlob(ctx, "video")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required", "message": err.Error()})
		return
	}
	thumbnail, err := readBlob(ctx, "thumbnail")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Thumbnail file is required", "message": err.Error()})
		return
	}

	item := model.VideoItem{
		Title:       title,
		Description: ctx.PostForm("description"),
		Author:      middleware.Requester(ctx),
	}
	h.videoSync.Add(item, media, thumbnail)
	accepted(ctx, "add", 0)
}

func readBlob(ctx *gin.Context, field string) (model.MediaBlob, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return model.MediaBlob{}, err
	}
	if fh.Size > maxUploadBytes {
		return model.MediaBlob{}, apperror.New(apperror.CodeInvalidArg, field+" exceeds upload limit")
	}
	f, err := fh.Open()
	if err != nil {
		return model.MediaBlob{}, err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)
	data, err := io.ReadAll(f)
	if err != nil {
		return model.MediaBlob{}, err
	}
	return model.MediaBlob{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// UpdateVideo handles PATCH /api/videos/:id; omitted fields keep their current value
func (h *VideoHandler) UpdateVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req dto.VideoUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	requester := middleware.Requester(ctx)

	switch {
	case req.Title != nil && req.Description != nil:
		h.videoSync.Update(id, requester, *req.Title, *req.Description)
	case req.Title != nil:
		h.videoSync.UpdateTitle(id, requester, *req.Title)
	case req.Description != nil:
		h.videoSync.UpdateDescription(id, requester, *req.Description)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	accepted(ctx, "update", id)
}

// DeleteVideo handles DELETE /api/videos/:id
func (h *VideoHandler) DeleteVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	h.videoSync.Delete(id, middleware.Requester(ctx))
	accepted(ctx, "delete", id)
}

// LikeVideo handles POST /api/videos/:id/like
func (h *VideoHandler) LikeVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	h.videoSync.UserLiked(id, middleware.Requester(ctx))
	accepted(ctx, "like", id)
}

// ViewVideo handles POST /api/videos/:id/view
func (h *VideoHandler) ViewVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	h.videoSync.IncrementViewCount(id)
	accepted(ctx, "view", id)
}

// Reload handles POST /api/videos/reload
func (h *VideoHandler) Reload(ctx *gin.Context) {
	h.videoSync.Reload()
	accepted(ctx, "reload", 0)
}

// GetSelected handles GET /api/selected; data is null when nothing is selected
func (h *VideoHandler) GetSelected(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": h.videoSync.Selected()})
}

// SelectVideo handles PUT /api/selected/:id
func (h *VideoHandler) SelectVideo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	h.videoSync.FetchSelectedVideoItem(id)
	accepted(ctx, "select", id)
}

// ClearSelected handles DELETE /api/selected
func (h *VideoHandler) ClearSelected(ctx *gin.Context) {
	h.videoSync.SetSelectedVideoItem(nil)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
}
