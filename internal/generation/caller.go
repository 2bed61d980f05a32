package generation

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rpggio/storyforge/internal/ratelimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/rpggio/storyforge/internal/generation"

// DefaultBackoff is the wait before each retry of a failed call.
var DefaultBackoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Options are shared by every provider client.
type Options struct {
	HTTPClient *http.Client
	// Limiter admits calls per category. Defaults to a fresh in-memory
	// limiter with the built-in windows.
	Limiter ratelimit.Limiter
	// Pacer spaces outbound requests. Nil disables pacing.
	Pacer   *rate.Limiter
	Backoff []time.Duration
	// Sleep waits between retries. Tests replace it to avoid real delays.
	Sleep  func(ctx context.Context, d time.Duration) error
	Tracer trace.Tracer
	Logger *slog.Logger
}

// caller runs one logical provider call: admission, pacing, retries and a
// span around all of it.
type caller struct {
	provider string
	http     *http.Client
	limiter  ratelimit.Limiter
	pacer    *rate.Limiter
	backoff  []time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	tracer   trace.Tracer
	logger   *slog.Logger
}

func newCaller(provider string, opts Options) caller {
	c := caller{
		provider: provider,
		http:     opts.HTTPClient,
		limiter:  opts.Limiter,
		pacer:    opts.Pacer,
		backoff:  opts.Backoff,
		sleep:    opts.Sleep,
		tracer:   opts.Tracer,
		logger:   opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 120 * time.Second}
	}
	if c.limiter == nil {
		c.limiter = ratelimit.NewMemory(nil)
	}
	if c.backoff == nil {
		c.backoff = DefaultBackoff
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c caller) do(ctx context.Context, op string, category ratelimit.Category, fn func(ctx context.Context) error) (err error) {
	ctx, span := c.tracer.Start(ctx, c.provider+"."+op, trace.WithAttributes(
		attribute.String("generation.provider", c.provider),
		attribute.String("generation.category", string(category)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := c.limiter.Allow(ctx, category); err != nil {
		c.logger.Warn("generation call rejected", "provider", c.provider, "op", op, "error", err)
		return err
	}

	for attempt := 0; ; attempt++ {
		if c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				return err
			}
		}

		err = fn(ctx)
		if err == nil || attempt >= len(c.backoff) || !retryable(err) {
			break
		}

		wait := c.backoff[attempt]
		c.logger.Warn("generation call failed, retrying", "provider", c.provider, "op", op, "attempt", attempt+1, "wait", wait, "error", err)
		span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt+1)))
		if serr := c.sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	span.SetAttributes(attribute.Bool("generation.ok", err == nil))
	return err
}

// retryable reports whether err is a transport failure or a 5xx response.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ratelimit.ErrRateLimited) || errors.Is(err, ErrMalformedGeneration) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Temporary()
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
