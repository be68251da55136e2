package goroutine

import (
	"errors"
	"sync"

	"nomadly/internal/shared/logger"
)

// ErrPoolSaturated is returned by Submit when the job queue is full. Callers
// answer "pending" and rely on the event source redelivering.
var ErrPoolSaturated = errors.New("worker pool saturated")

// ErrPoolStopped is returned by Submit after Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

type job struct {
	name string
	fn   func()
}

// Pool is a bounded worker pool with a bounded queue. Workers recover from
// panics the same way SafeGo does, so one bad job cannot take a worker down.
type Pool struct {
	jobs    chan job
	logger  logger.Interface
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewPool starts workers goroutines consuming from a queue of queueSize.
func NewPool(workers, queueSize int, log logger.Interface) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}

	p := &Pool{
		jobs:   make(chan job, queueSize),
		logger: log,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorw("worker job panicked", "job", j.name, "panic", r)
		}
	}()
	j.fn()
}

// Submit enqueues fn without blocking. It fails fast when the queue is full
// so the webhook handler never stalls the gateway's retry timer.
func (p *Pool) Submit(name string, fn func()) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.mu.Unlock()

	select {
	case p.jobs <- job{name: name, fn: fn}:
		return nil
	default:
		return ErrPoolSaturated
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.jobs)
	p.wg.Wait()
}
