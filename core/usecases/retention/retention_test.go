package retention

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/infrastructure/workers"
	"github.com/jrazmi/helix/sdk/logger"
)

// memLogs holds ids with their retention dates.
type memLogs struct {
	mu       sync.Mutex
	expires  map[string]time.Time
	purgeErr error
}

func (m *memLogs) ListExpired(_ context.Context, now time.Time, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, at := range m.expires {
		if !at.After(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *memLogs) PurgeExpired(_ context.Context, ids []string, now time.Time) (int64, error) {
	if m.purgeErr != nil {
		return 0, m.purgeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if at, ok := m.expires[id]; ok && !at.After(now) {
			delete(m.expires, id)
			n++
		}
	}
	return n, nil
}

func seed(n int, at time.Time) *memLogs {
	m := &memLogs{expires: map[string]time.Time{}}
	for i := range n {
		m.expires[fmt.Sprintf("log-%03d", i)] = at
	}
	return m
}

func TestCheckoutBatches(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	logs := seed(5, past)
	logs.expires["future"] = time.Now().Add(time.Hour)
	p := NewProcessor(logger.NewDiscard(), logs, Options{BatchSize: 2})
	ctx := context.Background()

	first, err := p.Checkout(ctx, "w1")
	require.NoError(t, err)
	second, err := p.Checkout(ctx, "w2")
	require.NoError(t, err)
	assert.Len(t, first.LogIDs, 2)
	assert.Len(t, second.LogIDs, 2)
	assert.NotEqual(t, first.LogIDs, second.LogIDs)

	third, err := p.Checkout(ctx, "w3")
	require.NoError(t, err)
	assert.Equal(t, []string{"log-004"}, third.LogIDs)

	_, err = p.Checkout(ctx, "w4")
	assert.ErrorIs(t, err, workers.ErrNoWorkAvailable)

	done, err := p.Process(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 2, done.Deleted)
	require.NoError(t, p.Complete(ctx, done, 3))
	assert.Len(t, logs.expires, 4)
}

func TestFailReleasesBatch(t *testing.T) {
	logs := seed(1, time.Now().Add(-time.Minute))
	logs.purgeErr = errors.New("db down")
	p := NewProcessor(logger.NewDiscard(), logs, Options{})
	ctx := context.Background()

	batch, err := p.Checkout(ctx, "w1")
	require.NoError(t, err)
	_, err = p.Process(ctx, batch)
	require.Error(t, err)
	require.NoError(t, p.Fail(ctx, batch, err))

	again, err := p.Checkout(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, batch.LogIDs, again.LogIDs)
}

func TestPoolDrainsExpiredLogs(t *testing.T) {
	logs := seed(25, time.Now().Add(-time.Hour))
	p := NewProcessor(logger.NewDiscard(), logs, Options{BatchSize: 4})

	pool, err := workers.NewWorkerPool("retention", 3, p,
		workers.WithLogger(logger.NewDiscard()),
		workers.WithPollInterval(time.Millisecond),
		workers.WithIdleInterval(10*time.Millisecond),
	)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- pool.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		logs.mu.Lock()
		defer logs.mu.Unlock()
		return len(logs.expires) == 0
	}, 2*time.Second, 5*time.Millisecond)

	pool.Stop()
	require.NoError(t, <-result)
}
