package loader

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Prefetch warms the cache with urls using at most workers concurrent
// downloads. Failures are logged and skipped. It returns how many images
// ended up in the cache.
func (l *Loader) Prefetch(ctx context.Context, urls []string, workers int) int {
	if len(urls) == 0 {
		return 0
	}

	if workers <= 0 {
		workers = 1
	}

	l.logger.Info("Starting image warmup", zap.Int("images", len(urls)), zap.Int("workers", workers))

	var g errgroup.Group
	g.SetLimit(workers)

	var loaded atomic.Int64
	for _, raw := range urls {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if _, err := l.Fetch(ctx, raw, true); err != nil {
				l.logger.Debug("Warmup image failed", zap.String("url", raw), zap.Error(err))
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}

	g.Wait()
	l.logger.Info("Image warmup completed", zap.Int64("loaded", loaded.Load()))

	return int(loaded.Load())
}
