package pipeline

import (
	"sync"
	"time"
)

// Sequencer runs submitted work sequentially per key while letting distinct
// keys proceed in parallel. The pipeline keys work by record id, which keeps
// a record's events in delivery order without serializing the whole feed.
type Sequencer struct {
	mu      sync.Mutex
	queues  map[string][]func()
	pending sync.WaitGroup
	closed  bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{queues: make(map[string][]func())}
}

// Submit queues fn behind any in-flight work for the same key. Submissions
// after Drain are dropped.
func (s *Sequencer) Submit(key string, fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.pending.Add(1)
	queue, running := s.queues[key]
	s.queues[key] = append(queue, fn)
	s.mu.Unlock()

	if running {
		return
	}

	go s.run(key)
}

func (s *Sequencer) run(key string) {
	for {
		s.mu.Lock()
		queue := s.queues[key]
		if len(queue) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		next := queue[0]
		s.queues[key] = queue[1:]
		s.mu.Unlock()

		next()
		s.pending.Done()
	}
}

// Drain stops accepting work and waits up to timeout for in-flight work to
// finish. It reports whether the queues fully drained.
func (s *Sequencer) Drain(timeout time.Duration) bool {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
