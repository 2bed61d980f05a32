package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/storyforge/internal/ratelimit"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func twoPerMinute() ratelimit.Limits {
	return ratelimit.Limits{
		ratelimit.CategoryImage: {MaxRequests: 2, Window: 60 * time.Second},
		ratelimit.CategoryText:  {MaxRequests: 5, Window: 60 * time.Second},
		ratelimit.CategoryAudio: {MaxRequests: 1, Window: 10 * time.Second},
	}
}

func TestMemory_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := ratelimit.NewMemory(twoPerMinute(), ratelimit.WithClock(clock.Now))

	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))
	clock.Advance(10 * time.Second)
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))

	err := l.Allow(ctx, ratelimit.CategoryImage)
	require.ErrorIs(t, err, ratelimit.ErrRateLimited)
	var limited *ratelimit.LimitedError
	require.ErrorAs(t, err, &limited)
	require.Equal(t, ratelimit.CategoryImage, limited.Category)
	require.Equal(t, 50*time.Second, limited.RetryAfter)

	wait, err := l.RetryAfter(ctx, ratelimit.CategoryImage)
	require.NoError(t, err)
	require.Greater(t, wait, time.Duration(0))

	clock.Advance(50 * time.Second)
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))

	err = l.Allow(ctx, ratelimit.CategoryImage)
	require.ErrorAs(t, err, &limited)
	require.Equal(t, 10*time.Second, limited.RetryAfter)
}

func TestMemory_RejectionDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := ratelimit.NewMemory(twoPerMinute(), ratelimit.WithClock(clock.Now))

	require.NoError(t, l.Allow(ctx, ratelimit.CategoryAudio))
	for i := 0; i < 3; i++ {
		require.Error(t, l.Allow(ctx, ratelimit.CategoryAudio))
	}
	clock.Advance(10 * time.Second)
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryAudio))
}

func TestMemory_CategoriesAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := ratelimit.NewMemory(twoPerMinute(), ratelimit.WithClock(newFakeClock().Now))

	require.NoError(t, l.Allow(ctx, ratelimit.CategoryAudio))
	require.ErrorIs(t, l.Allow(ctx, ratelimit.CategoryAudio), ratelimit.ErrRateLimited)
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryText))
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))
}

func TestMemory_UnknownCategory(t *testing.T) {
	l := ratelimit.NewMemory(nil)
	require.ErrorIs(t, l.Allow(context.Background(), "video"), ratelimit.ErrUnknownCategory)
	_, err := l.RetryAfter(context.Background(), "video")
	require.ErrorIs(t, err, ratelimit.ErrUnknownCategory)
}

func TestMemory_Status(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	l := ratelimit.NewMemory(twoPerMinute(), ratelimit.WithClock(clock.Now))

	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryImage))
	require.NoError(t, l.Allow(ctx, ratelimit.CategoryText))
	clock.Advance(15 * time.Second)

	status, err := l.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 3)
	require.Equal(t, ratelimit.Status{
		CanMakeRequest: false,
		RequestsMade:   2,
		MaxRequests:    2,
		TimeUntilReset: 45,
	}, status["image_generation"])
	require.Equal(t, ratelimit.Status{CanMakeRequest: true, RequestsMade: 1, MaxRequests: 5}, status["text_generation"])
	require.True(t, status["audio_generation"].CanMakeRequest)
}

func TestMemory_ConcurrentAdmissions(t *testing.T) {
	ctx := context.Background()
	l := ratelimit.NewMemory(ratelimit.Limits{
		ratelimit.CategoryText: {MaxRequests: 25, Window: time.Hour},
	})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, ratelimit.CategoryText) == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 25, admitted)
}

func TestDefaultLimits(t *testing.T) {
	limits := ratelimit.DefaultLimits()
	require.Equal(t, ratelimit.Window{MaxRequests: 20, Window: time.Minute}, limits[ratelimit.CategoryImage])
	require.Equal(t, ratelimit.Window{MaxRequests: 50, Window: time.Minute}, limits[ratelimit.CategoryText])
	require.Equal(t, ratelimit.Window{MaxRequests: 10, Window: time.Minute}, limits[ratelimit.CategoryAudio])
}
