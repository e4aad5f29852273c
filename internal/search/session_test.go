package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/SnapCharts-Backend/internal/model"
)

type searchFunc func(ctx context.Context, query string) ([]model.Asset, error)

func (f searchFunc) Search(ctx context.Context, query string) ([]model.Asset, error) {
	return f(ctx, query)
}

type callLog struct {
	mu      sync.Mutex
	queries []string
}

func (l *callLog) add(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, q)
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.queries...)
}

func assetsFor(q string) []model.Asset {
	return []model.Asset{{Symbol: q}}
}

func TestSession(t *testing.T) {
	t.Run("delivers search results", func(t *testing.T) {
		calls := &callLog{}
		results := &collector[Result]{}
		s := NewSession(context.Background(), searchFunc(func(_ context.Context, q string) ([]model.Asset, error) {
			calls.add(q)
			return assetsFor(q), nil
		}), testDelay, results.add)
		defer s.Close()

		s.Input(" tsla ")

		require.Eventually(t, func() bool { return len(results.values()) == 1 }, waitFor, tick)
		got := results.values()[0]
		assert.Equal(t, "tsla", got.Query)
		assert.Equal(t, assetsFor("tsla"), got.Assets)
		assert.NoError(t, got.Err)
		assert.Equal(t, []string{"tsla"}, calls.get())
	})

	t.Run("empty query delivers empty result without searching", func(t *testing.T) {
		calls := &callLog{}
		results := &collector[Result]{}
		s := NewSession(context.Background(), searchFunc(func(_ context.Context, q string) ([]model.Asset, error) {
			calls.add(q)
			return assetsFor(q), nil
		}), testDelay, results.add)
		defer s.Close()

		s.Input("aapl")
		require.Eventually(t, func() bool { return len(results.values()) == 1 }, waitFor, tick)
		s.Input("   ")
		require.Eventually(t, func() bool { return len(results.values()) == 2 }, waitFor, tick)

		last := results.values()[1]
		assert.Equal(t, "", last.Query)
		assert.NotNil(t, last.Assets)
		assert.Empty(t, last.Assets)
		assert.Equal(t, []string{"aapl"}, calls.get())
	})

	t.Run("superseded search is cancelled and dropped", func(t *testing.T) {
		slowStarted := make(chan struct{})
		slowDone := make(chan error, 1)
		results := &collector[Result]{}

		s := NewSession(context.Background(), searchFunc(func(ctx context.Context, q string) ([]model.Asset, error) {
			if q == "slow" {
				close(slowStarted)
				<-ctx.Done()
				slowDone <- ctx.Err()
				// Pretend the provider answered anyway.
				return assetsFor(q), nil
			}
			return assetsFor(q), nil
		}), testDelay, results.add)
		defer s.Close()

		s.Input("slow")
		<-slowStarted
		s.Input("fast")

		require.Eventually(t, func() bool { return len(results.values()) == 1 }, waitFor, tick)
		assert.ErrorIs(t, <-slowDone, context.Canceled)

		time.Sleep(3 * testDelay)
		got := results.values()
		require.Len(t, got, 1)
		assert.Equal(t, "fast", got[0].Query)
	})

	t.Run("errors are delivered", func(t *testing.T) {
		boom := errors.New("provider down")
		results := &collector[Result]{}
		s := NewSession(context.Background(), searchFunc(func(context.Context, string) ([]model.Asset, error) {
			return nil, boom
		}), testDelay, results.add)
		defer s.Close()

		s.Input("aapl")

		require.Eventually(t, func() bool { return len(results.values()) == 1 }, waitFor, tick)
		assert.ErrorIs(t, results.values()[0].Err, boom)
	})

	t.Run("close cancels in flight search", func(t *testing.T) {
		started := make(chan struct{})
		results := &collector[Result]{}
		s := NewSession(context.Background(), searchFunc(func(ctx context.Context, _ string) ([]model.Asset, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}), testDelay, results.add)

		s.Input("aapl")
		<-started
		s.Close()

		assert.Empty(t, results.values())
	})
}
