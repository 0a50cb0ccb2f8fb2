package compute

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs workgroup tasks on a fixed set of goroutines.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, which keeps the pool busy when some groups finish faster (for
// example edge groups with inactive lanes).
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int

	// queues holds one buffered queue per worker.
	queues []chan func()

	// submit orders Run's queueing before Close's signal to the workers.
	submit  sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers.
// Zero or negative uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4 tasks per worker hides submission latency.
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case task := <-own:
			task()
		default:
			if task := p.steal(id); task != nil {
				task()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case task := <-own:
				task()
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			task()
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *Pool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run distributes tasks round-robin across the workers and blocks until
// every task has returned. It reports false, without running anything, if
// the pool is closed.
//
// Submission holds a read lock that Close must acquire before it signals the
// workers, so every task Run queues is queued before the workers start
// their final drain and is therefore executed.
func (p *Pool) Run(tasks []func()) bool {
	p.submit.RLock()
	if !p.running.Load() {
		p.submit.RUnlock()
		return false
	}

	var pending sync.WaitGroup
	pending.Add(len(tasks))
	for i, fn := range tasks {
		p.queues[i%p.workers] <- func() {
			defer pending.Done()
			fn()
		}
	}
	p.submit.RUnlock()

	pending.Wait()
	return true
}

// Close stops accepting work, finishes queued tasks and stops the workers.
// It waits for submissions in progress. Close is safe to call multiple
// times.
func (p *Pool) Close() {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Running reports whether the pool still accepts work.
func (p *Pool) Running() bool {
	return p.running.Load()
}
