package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"
	"viewtube/infrastructure/realtime"

	"github.com/google/uuid"
)

// IVideoSyncUsecase keeps the in-memory video collection and the selected
// video in sync with the remote authority and the local store.
// Mutating and fetching operations return immediately; their outcome is
// observed through the subscriptions.
type IVideoSyncUsecase interface {
	FetchAllVideos()
	Reload()
	GetVideoItem(ctx context.Context, id int64) (model.VideoItem, error)
	SetSelectedVideoItem(item *model.VideoItem)
	FetchSelectedVideoItem(id int64)
	Add(item model.VideoItem, media, thumbnail model.MediaBlob)
	Update(id int64, requester, title, description string)
	UpdateTitle(id int64, requester, title string)
	UpdateDescription(id int64, requester, description string)
	Delete(id int64, requester string)
	UserLiked(id int64, requester string)
	IncrementViewCount(id int64)
	ApplyVideo(item model.VideoItem)

	Snapshot() []model.VideoItem
	Selected() *model.VideoItem
	Search(query string) []model.VideoItem

	SubscribeVideos() *realtime.Subscription[[]model.VideoItem]
	SubscribeSelected() *realtime.Subscription[*model.VideoItem]
	SubscribeEvents() (<-chan model.VideoEvent, func())

	// Wait blocks until every operation issued so far has settled.
	Wait()
	// Close cancels in-flight operations, waits for them and rejects new ones.
	Close()
}

// VideoSyncConfig tunes the engine; zero values fall back to defaults.
type VideoSyncConfig struct {
	CallTimeout time.Duration
	EventBuffer int
	Now         func() time.Time
}

type VideoSyncUsecase struct {
	remote      repository.IRemoteSource
	store       repository.IVideoStore
	callTimeout time.Duration
	eventBuffer int
	now         func() time.Time

	// mu guards items. Lock order: per-id lock, then mu, then selMu.
	mu    sync.Mutex
	items []model.VideoItem

	locks *keyedMutex

	selMu    sync.Mutex
	selSeq   uint64
	selected *model.VideoItem

	videos       *realtime.Hub[[]model.VideoItem]
	selectedFeed *realtime.Hub[*model.VideoItem]
	events       *realtime.Broadcaster[model.VideoEvent]

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lifeMu   sync.RWMutex
	isClosed bool
}

func NewVideoSyncUsecase(remote repository.IRemoteSource, store repository.IVideoStore, cfg VideoSyncConfig) IVideoSyncUsecase {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &VideoSyncUsecase{
		remote:       remote,
		store:        store,
		callTimeout:  cfg.CallTimeout,
		eventBuffer:  cfg.EventBuffer,
		now:          cfg.Now,
		items:        make([]model.VideoItem, 0),
		locks:        newKeyedMutex(),
		videos:       realtime.NewHub[[]model.VideoItem](),
		selectedFeed: realtime.NewHub[*model.VideoItem](),
		events:       realtime.NewBroadcaster[model.VideoEvent](),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// spawn runs fn on the engine's lifetime context
func (u *VideoSyncUsecase) spawn(op string, fn func(ctx context.Context)) {
	u.lifeMu.RLock()
	defer u.lifeMu.RUnlock()
	if u.isClosed {
		logger.GetLogger().WithField("operation", op).Warn("sync engine closed, operation dropped")
		return
	}
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		fn(u.ctx)
	}()
}

func (u *VideoSyncUsecase) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, u.callTimeout)
}

func (u *VideoSyncUsecase) Wait() {
	u.wg.Wait()
}

func (u *VideoSyncUsecase) Close() {
	u.lifeMu.Lock()
	if u.isClosed {
		u.lifeMu.Unlock()
		return
	}
	u.isClosed = true
	u.cancel()
	u.lifeMu.Unlock()
	u.wg.Wait()
}

func (u *VideoSyncUsecase) FetchAllVideos() {
	u.spawn("fetch_all", u.fetchAll)
}

func (u *VideoSyncUsecase) Reload() {
	u.FetchAllVideos()
}

func (u *VideoSyncUsecase) fetchAll(ctx context.Context) {
	log := logger.GetLogger().WithField("operation", "fetch_all")

	rctx, cancel := u.remoteCtx(ctx)
	items, err := u.remote.FetchAll(rctx)
	cancel()

	if err == nil {
		u.mu.Lock()
		u.items = model.CloneVideos(items)
		mirrorErr := u.mirror(ctx, items)
		u.publishVideosLocked()
		u.mu.Unlock()

		if mirrorErr != nil {
			log.WithField("error", mirrorErr).Error("failed to mirror remote videos into store")
			u.emitFailure("fetch_all", 0, "", mirrorErr)
		}
		log.WithField("count", len(items)).Info("videos synced from remote")
		u.emit(model.VideoEvent{Type: model.VideoEventSynced, Operation: "fetch_all"})
		return
	}

	log.WithField("error", err).Warn("remote fetch failed, falling back to store")
	cached, storeErr := u.store.ListAll(ctx)

	u.mu.Lock()
	if storeErr == nil {
		u.items = model.CloneVideos(cached)
	}
	u.publishVideosLocked()
	u.mu.Unlock()

	if storeErr != nil {
		log.WithField("error", storeErr).Error("store fallback failed, keeping current collection")
		u.emitFailure("fetch_all", 0, "", fmt.Errorf("remote: %v; store: %w", err, storeErr))
		return
	}
	u.emit(model.VideoEvent{
		Type:      model.VideoEventSyncFallback,
		Operation: "fetch_all",
		Error:     err.Error(),
		ErrorCode: apperror.CodeOf(err),
	})
}

// mirror writes the remote list through to the store and drops rows the remote no longer has.
// Caller holds u.mu.
func (u *VideoSyncUsecase) mirror(ctx context.Context, items []model.VideoItem) error {
	var firstErr error
	keep := make(map[int64]struct{}, len(items))
	for _, it := range items {
		keep[it.ID] = struct{}{}
		if err := u.store.Put(ctx, it); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	existing, err := u.store.ListAll(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	for _, it := range existing {
		if _, ok := keep[it.ID]; ok {
			continue
		}
		if _, err := u.store.Delete(ctx, it.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (u *VideoSyncUsecase) GetVideoItem(ctx context.Context, id int64) (model.VideoItem, error) {
	u.mu.Lock()
	for _, it := range u.items {
		if it.ID == id {
			u.mu.Unlock()
			return it, nil
		}
	}
	u.mu.Unlock()

	item, err := u.store.Get(ctx, id)
	if err != nil {
		return model.VideoItem{}, fmt.Errorf("failed to get video %d: %w", id, err)
	}
	return item, nil
}

func (u *VideoSyncUsecase) SetSelectedVideoItem(item *model.VideoItem) {
	u.selMu.Lock()
	defer u.selMu.Unlock()
	u.selSeq++
	u.setSelectedLocked(item)
}

func (u *VideoSyncUsecase) setSelectedLocked(item *model.VideoItem) {
	var cp *model.VideoItem
	if item != nil {
		v := *item
		cp = &v
	}
	u.selected = cp
	u.selectedFeed.Publish(copyItem(cp))
}

func copyItem(item *model.VideoItem) *model.VideoItem {
	if item == nil {
		return nil
	}
	v := *item
	return &v
}

// FetchSelectedVideoItem resolves id and selects it unless a newer selection was made meanwhile.
func (u *VideoSyncUsecase) FetchSelectedVideoItem(id int64) {
	u.selMu.Lock()
	u.selSeq++
	seq := u.selSeq
	u.selMu.Unlock()

	u.spawn("fetch_selected", func(ctx context.Context) {
		item, err := u.GetVideoItem(ctx, id)

		u.selMu.Lock()
		if seq != u.selSeq {
			u.selMu.Unlock()
			logger.GetLogger().WithField("video_id", id).Debug("discarding stale selection")
			return
		}
		switch {
		case err == nil:
			u.setSelectedLocked(&item)
		case errors.Is(err, apperror.ErrNotFound):
			u.setSelectedLocked(nil)
		}
		u.selMu.Unlock()

		if err != nil {
			u.emitFailure("fetch_selected", id, "", err)
		}
	})
}

func (u *VideoSyncUsecase) Add(item model.VideoItem, media, thumbnail model.MediaBlob) {
	u.spawn("add", func(ctx context.Context) {
		log := logger.GetLogger().WithField("operation", "add").WithField("author", item.Author)

		rctx, cancel := u.remoteCtx(ctx)
		created, err := u.remote.Create(rctx, item, media, thumbnail)
		cancel()
		if err != nil {
			log.WithField("error", err).Warn("remote create failed")
			u.emitFailure("add", 0, item.Author, err)
			return
		}

		u.mu.Lock()
		putErr := u.store.Put(ctx, created)
		u.upsertLocked(created)
		u.publishVideosLocked()
		u.mu.Unlock()

		if putErr != nil {
			log.WithField("error", putErr).WithField("video_id", created.ID).Error("failed to persist created video")
			u.emitFailure("add", created.ID, item.Author, putErr)
		}
		log.WithField("video_id", created.ID).Info("video created")
		u.emit(model.VideoEvent{Type: model.VideoEventCreated, Operation: "add", VideoID: created.ID, Requester: item.Author})
	})
}

// ApplyVideo upserts an item the remote already confirmed, without a remote call.
func (u *VideoSyncUsecase) ApplyVideo(item model.VideoItem) {
	u.spawn("apply", func(ctx context.Context) {
		unlock := u.locks.Lock(item.ID)
		defer unlock()

		u.mu.Lock()
		putErr := u.store.Put(ctx, item)
		u.upsertLocked(item)
		u.publishVideosLocked()
		u.mu.Unlock()
		u.refreshSelected(item)

		if putErr != nil {
			u.emitFailure("apply", item.ID, "", putErr)
			return
		}
		u.emit(model.VideoEvent{Type: model.VideoEventUpdated, Operation: "apply", VideoID: item.ID})
	})
}

// upsertLocked replaces the item with the same id in place or appends it. Caller holds u.mu.
func (u *VideoSyncUsecase) upsertLocked(item model.VideoItem) {
	for i := range u.items {
		if u.items[i].ID == item.ID {
			u.items[i] = item
			return
		}
	}
	u.items = append(u.items, item)
}

func (u *VideoSyncUsecase) Update(id int64, requester, title, description string) {
	u.spawn("update", func(ctx context.Context) {
		unlock := u.locks.Lock(id)
		defer unlock()
		u.update(ctx, "update", id, requester, title, description)
	})
}

// UpdateTitle keeps the description the item has when the update runs.
func (u *VideoSyncUsecase) UpdateTitle(id int64, requester, title string) {
	u.spawn("update_title", func(ctx context.Context) {
		unlock := u.locks.Lock(id)
		defer unlock()
		current, err := u.GetVideoItem(ctx, id)
		if err != nil {
			u.emitFailure("update_title", id, requester, err)
			return
		}
		u.update(ctx, "update_title", id, requester, title, current.Description)
	})
}

// UpdateDescription keeps the title the item has when the update runs.
func (u *VideoSyncUsecase) UpdateDescription(id int64, requester, description string) {
	u.spawn("update_description", func(ctx context.Context) {
		unlock := u.locks.Lock(id)
		defer unlock()
		current, err := u.GetVideoItem(ctx, id)
		if err != nil {
			u.emitFailure("update_description", id, requester, err)
			return
		}
		u.update(ctx, "update_description", id, requester, current.Title, description)
	})
}

// update runs with the per-id lock held
func (u *VideoSyncUsecase) update(ctx context.Context, op string, id int64, requester, title, description string) {
	rctx, cancel := u.remoteCtx(ctx)
	updated, err := u.remote.Update(rctx, id, requester, title, description)
	cancel()
	if err != nil {
		logger.GetLogger().WithField("video_id", id).WithField("error", err).Warn("remote update failed")
		u.emitFailure(op, id, requester, err)
		return
	}
	if updated.ID == id {
		title, description = updated.Title, updated.Description
	}

	item, found, putErr := u.patchLocal(ctx, id, func(v *model.VideoItem) {
		v.Title = title
		v.Description = description
	})
	if found {
		u.refreshSelected(item)
	}
	if putErr != nil {
		u.emitFailure(op, id, requester, putErr)
		return
	}
	u.emit(model.VideoEvent{Type: model.VideoEventUpdated, Operation: op, VideoID: id, Requester: requester})
}

// patchLocal applies fn to the in-memory item, or to the stored copy when the
// collection does not hold it, and writes the result through to the store.
func (u *VideoSyncUsecase) patchLocal(ctx context.Context, id int64, fn func(*model.VideoItem)) (model.VideoItem, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.items {
		if u.items[i].ID == id {
			fn(&u.items[i])
			item := u.items[i]
			err := u.store.Put(ctx, item)
			u.publishVideosLocked()
			return item, true, err
		}
	}

	stored, err := u.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.VideoItem{}, false, nil
		}
		return model.VideoItem{}, false, err
	}
	fn(&stored)
	return stored, false, u.store.Put(ctx, stored)
}

func (u *VideoSyncUsecase) Delete(id int64, requester string) {
	u.spawn("delete", func(ctx context.Context) {
		unlock := u.locks.Lock(id)
		defer unlock()

		rctx, cancel := u.remoteCtx(ctx)
		err := u.remote.Delete(rctx, id, requester)
		cancel()
		if err != nil {
			logger.GetLogger().WithField("video_id", id).WithField("error", err).Warn("remote delete failed")
			u.emitFailure("delete", id, requester, err)
			return
		}

		u.mu.Lock()
		for i := range u.items {
			if u.items[i].ID == id {
				u.items = append(u.items[:i:i], u.items[i+1:]...)
				break
			}
		}
		_, storeErr := u.store.Delete(ctx, id)
		u.publishVideosLocked()
		u.mu.Unlock()

		u.selMu.Lock()
		if u.selected != nil && u.selected.ID == id {
			u.setSelectedLocked(nil)
		}
		u.selMu.Unlock()

		if storeErr != nil {
			u.emitFailure("delete", id, requester, storeErr)
			return
		}
		u.emit(model.VideoEvent{Type: model.VideoEventDeleted, Operation: "delete", VideoID: id, Requester: requester})
	})
}

func (u *VideoSyncUsecase) UserLiked(id int64, requester string) {
	u.spawn("like", func(ctx context.Context) {
		unlock := u.locks.Lock(id)
		defer unlock()

		rctx, cancel := u.remoteCtx(ctx)
		likes, err := u.remote.Like(rctx, id, requester)
		cancel()
		if err != nil {
			logger.GetLogger().WithField("video_id", id).WithField("error", err).Warn("remote like failed")
			u.emitFailure("like", id, requester, err)
			return
		}

		item, found, putErr := u.patchLocal(ctx, id, func(v *model.VideoItem) { v.Likes = likes })
		if found {
			u.refreshSelected(item)
		}
		if putErr != nil {
			u.emitFailure("like", id, requester, putErr)
			return
		}
		u.emit(model.VideoEvent{Type: model.VideoEventLiked, Operation: "like", VideoID: id, Requester: requester})
	})
}

// IncrementViewCount is best-effort: failures are logged only.
func (u *VideoSyncUsecase) IncrementViewCount(id int64) {
	u.spawn("view", func(ctx context.Context) {
		log := logger.GetLogger().WithField("operation", "view").WithField("video_id", id)
		unlock := u.locks.Lock(id)
		defer unlock()

		rctx, cancel := u.remoteCtx(ctx)
		views, err := u.remote.IncrementView(rctx, id)
		cancel()
		if err != nil {
			log.WithField("error", err).Warn("view increment failed")
			return
		}

		item, found, putErr := u.patchLocal(ctx, id, func(v *model.VideoItem) { v.Views = views })
		if found {
			u.refreshSelected(item)
		}
		if putErr != nil {
			log.WithField("error", putErr).Warn("failed to persist view count")
			return
		}
		u.emit(model.VideoEvent{Type: model.VideoEventViewed, Operation: "view", VideoID: id})
	})
}

// refreshSelected replaces the selected copy when it holds the same id
func (u *VideoSyncUsecase) refreshSelected(item model.VideoItem) {
	u.selMu.Lock()
	defer u.selMu.Unlock()
	if u.selected != nil && u.selected.ID == item.ID {
		u.setSelectedLocked(&item)
	}
}

func (u *VideoSyncUsecase) Snapshot() []model.VideoItem {
	u.mu.Lock()
	defer u.mu.Unlock()
	return model.CloneVideos(u.items)
}

func (u *VideoSyncUsecase) Selected() *model.VideoItem {
	u.selMu.Lock()
	defer u.selMu.Unlock()
	return copyItem(u.selected)
}

// Search filters the current collection by a case-insensitive title match.
func (u *VideoSyncUsecase) Search(query string) []model.VideoItem {
	snapshot := u.Snapshot()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return snapshot
	}
	out := make([]model.VideoItem, 0)
	for _, it := range snapshot {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}
	return out
}

func (u *VideoSyncUsecase) SubscribeVideos() *realtime.Subscription[[]model.VideoItem] {
	return u.videos.Subscribe()
}

func (u *VideoSyncUsecase) SubscribeSelected() *realtime.Subscription[*model.VideoItem] {
	return u.selectedFeed.Subscribe()
}

func (u *VideoSyncUsecase) SubscribeEvents() (<-chan model.VideoEvent, func()) {
	return u.events.Subscribe(u.eventBuffer)
}

// publishVideosLocked sends a copy of the collection. Caller holds u.mu.
func (u *VideoSyncUsecase) publishVideosLocked() {
	u.videos.Publish(model.CloneVideos(u.items))
}

func (u *VideoSyncUsecase) emit(evt model.VideoEvent) {
	evt.ID = uuid.NewString()
	evt.OccurredAt = u.now().UTC()
	u.events.Broadcast(evt)
}

func (u *VideoSyncUsecase) emitFailure(op string, id int64, requester string, err error) {
	u.emit(model.VideoEvent{
		Type:      model.VideoEventFailed,
		Operation: op,
		VideoID:   id,
		Requester: requester,
		Error:     err.Error(),
		ErrorCode: apperror.CodeOf(err),
	})
}
