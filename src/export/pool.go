package export

import (
	"context"
	"image"
	"log"
	"sync"
)

// Callback is invoked when a job finishes (from a worker goroutine). The
// event loop should pass a closure that posts back into the loop safely.
type Callback func(Result, error)

// Pool is a fixed-size export worker pool with a 1-slot input queue
// (strict back-pressure: a capture taken while one is still exporting is
// dropped rather than queued up).
type Pool struct {
	jobs chan queued
	wg   sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
	cb  Callback
}

// NewPool creates an export pool. Size defaults to 1 when size<=0; exports
// are I/O-bound and ordering matters for the clipboard.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan queued, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for q := range p.jobs {
				var b image.Rectangle
				if q.job.Image != nil {
					b = q.job.Image.Bounds()
				}
				log.Printf("Export: starting job %dx%d, %d shapes", b.Dx(), b.Dy(), len(q.job.Shapes))
				res, err := Run(q.ctx, q.job)
				log.Printf("Export: job done, path=%q, err=%v", res.Path, err)
				q.cb(res, err)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// dropped.
func (p *Pool) Submit(ctx context.Context, job Job, cb Callback) bool {
	select {
	case p.jobs <- queued{ctx: ctx, job: job, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
