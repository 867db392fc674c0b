package funnel

import (
	"context"
	"errors"
	"testing"
	"time"

	"ad-funnel-gate/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestFlow(t *testing.T, enforce bool) (*Flow, *Store, *time.Time) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(client, 0)
	flow := NewFlow(store, storage.NewBuckets(client, time.Hour), enforce)
	clock := time.UnixMilli(1700000000000)
	flow.now = func() time.Time { return clock }
	return flow, store, &clock
}

func TestEnterRecordsVisit(t *testing.T) {
	flow, store, _ := setupTestFlow(t, true)
	ctx := context.Background()

	view, err := flow.Enter(ctx, "client", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Step)
	assert.Equal(t, 4, view.TotalSteps)
	assert.Equal(t, 10, view.Countdown)
	assert.Len(t, view.Ads, 2)
	assert.Equal(t, "/ad/2", view.NextPath)
	assert.Equal(t, "/ad/1/countdown", view.CountdownWS)

	assert.Equal(t, 1, store.Load(ctx).Analytics.PageVisits[1])

	_, err = flow.Enter(ctx, "client", 9)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestNextIsGatedByCountdown(t *testing.T) {
	flow, _, clock := setupTestFlow(t, true)
	ctx := context.Background()

	_, err := flow.Enter(ctx, "client", 2)
	require.NoError(t, err)

	*clock = clock.Add(3 * time.Second)
	_, err = flow.Next(ctx, "client", 2)
	var gateErr *GateError
	require.True(t, errors.As(err, &gateErr))
	assert.ErrorIs(t, err, ErrGateClosed)
	assert.Equal(t, 5, gateErr.Remaining)

	*clock = clock.Add(5 * time.Second)
	next, err := flow.Next(ctx, "client", 2)
	require.NoError(t, err)
	assert.Equal(t, "/ad/3", next)
}

func TestNextWithoutEnteringOwesFullCountdown(t *testing.T) {
	flow, _, _ := setupTestFlow(t, true)
	ctx := context.Background()

	_, err := flow.Enter(ctx, "client", 1)
	require.NoError(t, err)

	_, err = flow.Next(ctx, "client", 3)
	var gateErr *GateError
	require.True(t, errors.As(err, &gateErr))
	assert.Equal(t, 10, gateErr.Remaining)
}

func TestLastPageGoesToDownload(t *testing.T) {
	flow, _, clock := setupTestFlow(t, true)
	ctx := context.Background()

	view, err := flow.Enter(ctx, "client", 4)
	require.NoError(t, err)
	assert.True(t, view.IsLast)

	*clock = clock.Add(12 * time.Second)
	next, err := flow.Next(ctx, "client", 4)
	require.NoError(t, err)
	assert.Equal(t, DownloadPath, next)
}

func TestNextUnenforced(t *testing.T) {
	flow, _, _ := setupTestFlow(t, false)

	next, err := flow.Next(context.Background(), "client", 1)
	require.NoError(t, err)
	assert.Equal(t, "/ad/2", next)
}

func TestClickAndDownload(t *testing.T) {
	flow, store, _ := setupTestFlow(t, true)
	ctx := context.Background()

	link, err := flow.Click(ctx, "ad3")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/antivirus", link)

	_, err = flow.Click(ctx, "nope")
	assert.ErrorIs(t, err, ErrAdNotFound)

	view := flow.EnterDownload(ctx)
	assert.Equal(t, "Premium Software Suite v2.0", view.SoftwareName)

	url, err := flow.Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/download/software.exe", url)

	cfg := store.Load(ctx)
	assert.Equal(t, 1, cfg.Analytics.AdClicks["ad3"])
	assert.Equal(t, 1, cfg.Analytics.PageVisits[DownloadPageID])
	assert.Equal(t, 1, cfg.Analytics.TotalDownloads)
}
