package render

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"docraster/internal/pkg/errors"
)

// Pool bounds the number of concurrent CPU-bound renders so one large
// document cannot starve the goroutines serving request I/O. It wraps
// any Renderer; the request goroutine suspends at the semaphore and at
// the hand-off, both cancellable through ctx.
type Pool struct {
	renderer Renderer
	sem      *semaphore.Weighted
}

func NewPool(r Renderer, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		renderer: r,
		sem:      semaphore.NewWeighted(int64(workers)),
	}
}

func (p *Pool) Render(ctx context.Context, data []byte, params Params) ([]PageImage, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeRender, "render.dispatch", "render task canceled")
	}

	type result struct {
		images []PageImage
		err    error
	}

	ch := make(chan result, 1)
	go func() {
		defer p.sem.Release(1)
		images, err := p.renderer.Render(ctx, data, params)
		ch <- result{images: images, err: err}
	}()

	select {
	case <-ctx.Done():
		// The worker goroutine drains into the buffered channel and
		// releases its slot on its own.
		return nil, errors.WrapWithCode(ctx.Err(), errors.CodeRender, "render.dispatch", "render task canceled")
	case res := <-ch:
		return res.images, res.err
	}
}
