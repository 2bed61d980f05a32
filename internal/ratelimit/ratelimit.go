// Package ratelimit implements per-category sliding-window admission for
// outbound generation calls.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Category is an independent window of admitted requests.
type Category string

const (
	CategoryImage Category = "image"
	CategoryText  Category = "text"
	CategoryAudio Category = "audio"
)

// Categories lists every category in status order.
var Categories = []Category{CategoryImage, CategoryText, CategoryAudio}

// StatusKey is the key a category is reported under by Status.
func (c Category) StatusKey() string {
	return string(c) + "_generation"
}

var (
	// ErrRateLimited matches every *LimitedError.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUnknownCategory is returned for categories without a window.
	ErrUnknownCategory = errors.New("unknown rate limit category")
)

// LimitedError reports a rejected request and when the next one would be
// admitted.
type LimitedError struct {
	Category   Category
	RetryAfter time.Duration
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("%s: %s, retry in %.1fs", ErrRateLimited, e.Category, e.RetryAfter.Seconds())
}

func (e *LimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// Window is the admission policy for one category: at most MaxRequests
// timestamps may fall within the trailing Window.
type Window struct {
	MaxRequests int
	Window      time.Duration
}

// Limits maps each category to its window.
type Limits map[Category]Window

// DefaultLimits returns the built-in windows.
func DefaultLimits() Limits {
	return Limits{
		CategoryImage: {MaxRequests: 20, Window: time.Minute},
		CategoryText:  {MaxRequests: 50, Window: time.Minute},
		CategoryAudio: {MaxRequests: 10, Window: time.Minute},
	}
}

// Status is a snapshot of one category's window.
type Status struct {
	CanMakeRequest bool    `json:"can_make_request"`
	RequestsMade   int     `json:"requests_made"`
	MaxRequests    int     `json:"max_requests"`
	TimeUntilReset float64 `json:"time_until_reset"`
}

// Limiter admits requests per category.
type Limiter interface {
	// Allow admits and records a request, or returns a *LimitedError.
	Allow(ctx context.Context, category Category) error
	// RetryAfter reports how long until a request would be admitted.
	RetryAfter(ctx context.Context, category Category) (time.Duration, error)
	// Status reports every category keyed by Category.StatusKey.
	Status(ctx context.Context) (map[string]Status, error)
}

func newStatus(count, max int, retry time.Duration) Status {
	if retry < 0 {
		retry = 0
	}
	return Status{
		CanMakeRequest: count < max,
		RequestsMade:   count,
		MaxRequests:    max,
		TimeUntilReset: math.Round(retry.Seconds()*100) / 100,
	}
}
