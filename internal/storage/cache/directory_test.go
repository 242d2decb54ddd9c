package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tinywideclouds/go-photoshare-notifier/internal/storage/cache"
	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

// --- Mocks ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) error {
	return m.Called(ctx, key, dest).Error(0)
}
func (m *MockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *MockCache) Del(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetViewer(ctx context.Context, viewerID string) (*photoshare.Viewer, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photoshare.Viewer), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedDirectory(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	cacheKey := "photoshare:viewer:u1"

	t.Run("Miss falls through and populates", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDir := new(MockDirectory)
		dir := cache.NewCachedDirectory(mockDir, mockCache, time.Hour, logger)

		viewer := &photoshare.Viewer{ID: "u1", FCMTokens: []string{"tA"}}
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(cache.ErrCacheMiss)
		mockDir.On("GetViewer", ctx, "u1").Return(viewer, nil).Once()
		mockCache.On("Set", ctx, cacheKey, viewer, time.Hour).Return(nil)

		got, err := dir.GetViewer(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, viewer, got)
		mockDir.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Missing viewer is not cached", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDir := new(MockDirectory)
		dir := cache.NewCachedDirectory(mockDir, mockCache, time.Hour, logger)

		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(cache.ErrCacheMiss)
		mockDir.On("GetViewer", ctx, "u1").Return(nil, nil).Once()

		got, err := dir.GetViewer(ctx, "u1")

		require.NoError(t, err)
		assert.Nil(t, got)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cache write failure does not fail lookup", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDir := new(MockDirectory)
		dir := cache.NewCachedDirectory(mockDir, mockCache, time.Hour, logger)

		viewer := &photoshare.Viewer{ID: "u1", FCMTokens: []string{"tA"}}
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(assert.AnError)
		mockDir.On("GetViewer", ctx, "u1").Return(viewer, nil).Once()
		mockCache.On("Set", ctx, cacheKey, viewer, time.Hour).Return(assert.AnError)

		got, err := dir.GetViewer(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, viewer, got)
	})

	t.Run("Directory error propagates and is not cached", func(t *testing.T) {
		mockCache := new(MockCache)
		mockDir := new(MockDirectory)
		dir := cache.NewCachedDirectory(mockDir, mockCache, time.Hour, logger)

		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(cache.ErrCacheMiss)
		mockDir.On("GetViewer", ctx, "u1").Return(nil, assert.AnError).Once()

		_, err := dir.GetViewer(ctx, "u1")

		require.ErrorIs(t, err, assert.AnError)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalidate deletes the key", func(t *testing.T) {
		mockCache := new(MockCache)
		dir := cache.NewCachedDirectory(new(MockDirectory), mockCache, time.Hour, logger)

		mockCache.On("Del", ctx, cacheKey).Return(nil)

		require.NoError(t, dir.Invalidate(ctx, "u1"))
		mockCache.AssertExpectations(t)
	})
}

func TestCachedDirectory_InMemoryReadAside(t *testing.T) {
	ctx := context.Background()
	mockDir := new(MockDirectory)
	dir := cache.NewCachedDirectory(mockDir, newMemoryCache(), time.Minute, newTestLogger())

	mockDir.On("GetViewer", ctx, "u2").Return(&photoshare.Viewer{ID: "u2", FCMTokens: []string{"tC"}}, nil).Once()
	mockDir.On("GetViewer", ctx, "ghost").Return(nil, nil).Twice()

	for range 2 {
		v, err := dir.GetViewer(ctx, "u2")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, []string{"tC"}, v.FCMTokens)

		missing, err := dir.GetViewer(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, missing)
	}

	// u2 is served from cache the second time; ghost hits the directory both times
	mockDir.AssertExpectations(t)
}
