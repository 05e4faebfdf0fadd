package panel_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DigneZzZ/remnabot/internal/cache"
	"github.com/DigneZzZ/remnabot/internal/panel"
	"github.com/DigneZzZ/remnabot/internal/panel/stubs"
)

func TestCached_ServesInboundsFromCache(t *testing.T) {
	store, err := cache.OpenBolt(filepath.Join(t.TempDir(), "c.bbolt"), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	mock := stubs.NewMockPanel().Seed()
	g := panel.NewCached(mock, store)
	ctx := context.Background()

	first, err := g.ListInbounds(ctx)
	require.NoError(t, err)
	second, err := g.ListInbounds(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.Calls("ListInbounds"))

	_, err = g.SystemStats(ctx)
	require.NoError(t, err)
	_, err = g.SystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("SystemStats"))
}

func TestCached_NopPassesThrough(t *testing.T) {
	mock := stubs.NewMockPanel().Seed()
	g := panel.NewCached(mock, nil)
	ctx := context.Background()

	_, err := g.ListInbounds(ctx)
	require.NoError(t, err)
	_, err = g.ListInbounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls("ListInbounds"))

	// uncached operations reach the wrapped gateway
	_, err = g.ListHosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("ListHosts"))
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	mock := stubs.NewMockPanel().Seed()
	store, err := cache.OpenBolt(filepath.Join(t.TempDir(), "c.bbolt"), zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	g := panel.NewCached(mock, store)
	mock.FailNext("ListInbounds", panel.NotFound("inbounds", "all"))

	_, err = g.ListInbounds(context.Background())
	assert.Error(t, err)

	inbounds, err := g.ListInbounds(context.Background())
	require.NoError(t, err)
	assert.Len(t, inbounds, 2)
}
