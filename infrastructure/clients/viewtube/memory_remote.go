package viewtube

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
)

// MemoryRemote is an in-process remote authority. It assigns ids, enforces
// author ownership on update and delete, and counts likes once per requester.
type MemoryRemote struct {
	mu      sync.Mutex
	nextID  int64
	order   []int64
	videos  map[int64]model.VideoItem
	likers  map[int64]map[string]struct{}
	offline bool
	now     func() time.Time
}

// NewMemoryRemote creates an empty authority. A nil clock uses time.Now.
func NewMemoryRemote(now func() time.Time) *MemoryRemote {
	if now == nil {
		now = time.Now
	}
	return &MemoryRemote{
		nextID: 1,
		videos: make(map[int64]model.VideoItem),
		likers: make(map[int64]map[string]struct{}),
		now:    now,
	}
}

// Seed loads items as already published. Items without an id get the next one.
func (m *MemoryRemote) Seed(items ...model.VideoItem) []model.VideoItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.VideoItem, 0, len(items))
	for _, it := range items {
		if it.ID == 0 {
			it.ID = m.nextID
		}
		if it.ID >= m.nextID {
			m.nextID = it.ID + 1
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = m.now().UTC()
		}
		if _, exists := m.videos[it.ID]; !exists {
			m.order = append(m.order, it.ID)
		}
		m.videos[it.ID] = it
		out = append(out, it)
	}
	return out
}

// SetOffline makes every call fail as unreachable until switched back.
func (m *MemoryRemote) SetOffline(offline bool) {
	m.mu.Lock()
	m.offline = offline
	m.mu.Unlock()
}

func (m *MemoryRemote) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperror.Wrap(err, apperror.CodeUnreachable, "remote call cancelled")
	}
	if m.offline {
		return apperror.New(apperror.CodeUnreachable, "remote offline")
	}
	return nil
}

func (m *MemoryRemote) FetchAll(ctx context.Context) ([]model.VideoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	out := make([]model.VideoItem, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.videos[id])
	}
	return out, nil
}

func (m *MemoryRemote) Create(ctx context.Context, item model.VideoItem, media, thumbnail model.MediaBlob) (model.VideoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return model.VideoItem{}, err
	}
	if strings.TrimSpace(item.Title) == "" {
		return model.VideoItem{}, apperror.New(apperror.CodeInvalidArg, "title is required")
	}
	if item.Author == "" {
		return model.VideoItem{}, apperror.New(apperror.CodeInvalidArg, "author is required")
	}

	item.ID = m.nextID
	m.nextID++
	item.Likes = 0
	item.Views = 0
	item.CreatedAt = m.now().UTC()
	if item.VideoURL == "" {
		item.VideoURL = fmt.Sprintf("memory://videos/%d/%s", item.ID, blobName(media, "video"))
	}
	if item.ThumbnailURL == "" {
		item.ThumbnailURL = fmt.Sprintf("memory://videos/%d/%s", item.ID, blobName(thumbnail, "thumbnail"))
	}
	m.videos[item.ID] = item
	m.order = append(m.order, item.ID)
	return item, nil
}

func blobName(b model.MediaBlob, fallback string) string {
	if b.FileName != "" {
		return b.FileName
	}
	return fallback
}

// owned returns the item when it exists and requester is its author
func (m *MemoryRemote) owned(id int64, requester string) (model.VideoItem, error) {
	v, ok := m.videos[id]
	if !ok {
		return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not found", id))
	}
	if requester == "" || requester != v.Author {
		return model.VideoItem{}, apperror.New(apperror.CodeForbidden, fmt.Sprintf("%q does not own video %d", requester, id))
	}
	return v, nil
}

func (m *MemoryRemote) Update(ctx context.Context, id int64, requester, title, description string) (model.VideoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return model.VideoItem{}, err
	}
	v, err := m.owned(id, requester)
	if err != nil {
		return model.VideoItem{}, err
	}
	v.Title = title
	v.Description = description
	m.videos[id] = v
	return v, nil
}

func (m *MemoryRemote) Delete(ctx context.Context, id int64, requester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	if _, err := m.owned(id, requester); err != nil {
		return err
	}
	delete(m.videos, id)
	delete(m.likers, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRemote) Like(ctx context.Context, id int64, requester string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	v, ok := m.videos[id]
	if !ok {
		return 0, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not found", id))
	}
	if requester == "" {
		return 0, apperror.New(apperror.CodeInvalidArg, "requester is required")
	}
	set, ok := m.likers[id]
	if !ok {
		set = make(map[string]struct{})
		m.likers[id] = set
	}
	if _, seen := set[requester]; !seen {
		set[requester] = struct{}{}
		v.Likes++
		m.videos[id] = v
	}
	return v.Likes, nil
}

func (m *MemoryRemote) IncrementView(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	v, ok := m.videos[id]
	if !ok {
		return 0, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not found", id))
	}
	v.Views++
	m.videos[id] = v
	return v.Views, nil
}
