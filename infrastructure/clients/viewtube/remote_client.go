package viewtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2/clientcredentials"
)

// RequesterHeader carries the acting user identity on mutating calls
const RequesterHeader = "X-Requester-Id"

// Config represents the remote video API configuration
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	PageSize     int
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// RemoteClient talks to the remote video API over HTTP
type RemoteClient struct {
	baseURL  string
	client   *http.Client
	pageSize int
}

type listParams struct {
	Page     int `url:"page"`
	PageSize int `url:"page_size"`
}

type listResponse struct {
	Data  []model.VideoItem `json:"data"`
	Total int               `json:"total"`
}

type itemResponse struct {
	Data model.VideoItem `json:"data"`
}

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewRemoteClient creates the HTTP RemoteSource. When client credentials are
// configured every request carries an OAuth2 bearer token.
func NewRemoteClient(ctx context.Context, cfg Config) repository.IRemoteSource {
	var httpClient *http.Client
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(ctx)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &RemoteClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   httpClient,
		pageSize: pageSize,
	}
}

func (c *RemoteClient) FetchAll(ctx context.Context) ([]model.VideoItem, error) {
	all := make([]model.VideoItem, 0)
	for page := 1; ; page++ {
		v, err := query.Values(listParams{Page: page, PageSize: c.pageSize})
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArg, "encode list params")
		}
		var out listResponse
		if err := c.doJSON(ctx, http.MethodGet, "/api/videos?"+v.Encode(), "", nil, "", &out); err != nil {
			return nil, err
		}
		all = append(all, out.Data...)
		if len(out.Data) < c.pageSize || (out.Total > 0 && len(all) >= out.Total) {
			break
		}
	}
	logger.GetLogger().WithField("count", len(all)).Debug("fetched remote videos")
	return all, nil
}

func (c *RemoteClient) Create(ctx context.Context, item model.VideoItem, media, thumbnail model.MediaBlob) (model.VideoItem, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fields := map[string]string{
		"title":       item.Title,
		"description": item.Description,
		"author":      item.Author,
	}
	for k, val := range fields {
		if err := w.WriteField(k, val); err != nil {
			return model.VideoItem{}, apperror.Wrap(err, apperror.CodeInvalidArg, "write form field")
		}
	}
	if err := writeBlob(w, "video", media); err != nil {
		return model.VideoItem{}, err
	}
	if err := writeBlob(w, "thumbnail", thumbnail); err != nil {
		return model.VideoItem{}, err
	}
	if err := w.Close(); err != nil {
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeInvalidArg, "close multipart body")
	}

	var out itemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/videos", item.Author, body, w.FormDataContentType(), &out); err != nil {
		return model.VideoItem{}, err
	}
	return out.Data, nil
}

func writeBlob(w *multipart.Writer, field string, blob model.MediaBlob) error {
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := blob.FileName
	if name == "" {
		name = field
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidArg, "create "+field+" part")
	}
	if _, err := part.Write(blob.Data); err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidArg, "write "+field+" part")
	}
	return nil
}

func (c *RemoteClient) Update(ctx context.Context, id int64, requester, title, description string) (model.VideoItem, error) {
	payload, err := json.Marshal(updateRequest{Title: title, Description: description})
	if err != nil {
		return model.VideoItem{}, apperror.Wrap(err, apperror.CodeInvalidArg, "encode update")
	}
	var out itemResponse
	path := fmt.Sprintf("/api/videos/%d", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, requester, bytes.NewReader(payload), "application/json", &out); err != nil {
		return model.VideoItem{}, err
	}
	return out.Data, nil
}

func (c *RemoteClient) Delete(ctx context.Context, id int64, requester string) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/videos/%d", id), requester, nil, "", nil)
}

func (c *RemoteClient) Like(ctx context.Context, id int64, requester string) (int64, error) {
	var out struct {
		Likes int64 `json:"likes"`
	}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/videos/%d/likes", id), requester, nil, "", &out); err != nil {
		return 0, err
	}
	return out.Likes, nil
}

func (c *RemoteClient) IncrementView(ctx context.Context, id int64) (int64, error) {
	var out struct {
		Views int64 `json:"views"`
	}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/videos/%d/views", id), "", nil, "", &out); err != nil {
		return 0, err
	}
	return out.Views, nil
}

func (c *RemoteClient) doJSON(ctx context.Context, method, path, requester string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidArg, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if requester != "" {
		req.Header.Set(RequesterHeader, requester)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("path", path).Warn("remote call failed")
		return apperror.Wrap(err, apperror.CodeUnreachable, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, method, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.Wrap(err, apperror.CodeUnavailable, "decode remote response")
	}
	return nil
}

// statusError maps a non-2xx response onto the remote error taxonomy
func statusError(resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil {
		if er.Error != "" {
			msg = er.Error
		} else if er.Message != "" {
			msg = er.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	msg = fmt.Sprintf("%s %s: %d %s", method, path, resp.StatusCode, msg)

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return apperror.New(apperror.CodeForbidden, msg)
	case resp.StatusCode == http.StatusNotFound:
		return apperror.New(apperror.CodeNotFound, msg)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return apperror.New(apperror.CodeUnavailable, msg)
	default:
		return apperror.New(apperror.CodeInvalidArg, msg)
	}
}
