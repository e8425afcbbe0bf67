package persistence

import (
	"context"
	"fmt"
	"sync"

	"viewtube/domain/apperror"
	"viewtube/domain/model"
)

// MemoryVideoStore keeps items in insertion order; used for demo mode and tests
type MemoryVideoStore struct {
	mu     sync.RWMutex
	order  []int64
	videos map[int64]model.VideoItem
}

func NewMemoryVideoStore() *MemoryVideoStore {
	return &MemoryVideoStore{videos: make(map[int64]model.VideoItem)}
}

func (s *MemoryVideoStore) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	if !ok {
		return model.VideoItem{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("video %d not in store", id))
	}
	return v, nil
}

func (s *MemoryVideoStore) Put(ctx context.Context, item model.VideoItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.videos[item.ID] = item
	return nil
}

func (s *MemoryVideoStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.videos[id]; !exists {
		return false, nil
	}
	delete(s.videos, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryVideoStore) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.VideoItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.videos[id])
	}
	return out, nil
}
