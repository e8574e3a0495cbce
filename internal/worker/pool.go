package worker

import (
	"sync"

	"github.com/example/atlaspay/internal/metrics"
)

type task func()

// Pool bounds the goroutines used for outbound notification dispatch.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.NotifyQueueDepth.Dec()
			}
		}()
	}
	return p
}

func (p *Pool) Submit(f func()) {
	metrics.NotifyQueueDepth.Inc()
	p.jobs <- f
}

func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
