package usecase_test

import (
	"context"

	"viewtube/domain/model"

	"github.com/stretchr/testify/mock"
)

type MockRemoteSource struct {
	mock.Mock
}

func (m *MockRemoteSource) FetchAll(ctx context.Context) ([]model.VideoItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoItem), args.Error(1)
}

func (m *MockRemoteSource) Create(ctx context.Context, item model.VideoItem, media, thumbnail model.MediaBlob) (model.VideoItem, error) {
	args := m.Called(ctx, item, media, thumbnail)
	return args.Get(0).(model.VideoItem), args.Error(1)
}

func (m *MockRemoteSource) Update(ctx context.Context, id int64, requester, title, description string) (model.VideoItem, error) {
	args := m.Called(ctx, id, requester, title, description)
	return args.Get(0).(model.VideoItem), args.Error(1)
}

func (m *MockRemoteSource) Delete(ctx context.Context, id int64, requester string) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockRemoteSource) Like(ctx context.Context, id int64, requester string) (int64, error) {
	args := m.Called(ctx, id, requester)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemoteSource) IncrementView(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockVideoStore struct {
	mock.Mock
}

func (m *MockVideoStore) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.VideoItem), args.Error(1)
}

func (m *MockVideoStore) Put(ctx context.Context, item model.VideoItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockVideoStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVideoStore) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoItem), args.Error(1)
}

type MockEventSink struct {
	mock.Mock
}

func (m *MockEventSink) Name() string {
	return m.Called().String(0)
}

func (m *MockEventSink) PublishVideoEvent(ctx context.Context, event model.VideoEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
