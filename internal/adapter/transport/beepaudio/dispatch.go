package beepaudio

import (
	"sync"
)

// dispatcher runs listener callbacks in order on its own goroutine.
// push never blocks, so it is safe to call with any lock held.
type dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *dispatcher) push(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case <-d.signal:
		}

		for {
			select {
			case <-d.done:
				return
			default:
			}

			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			fn := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()

			fn()
		}
	}
}

// stop drops undelivered callbacks and waits for the goroutine to exit.
func (d *dispatcher) stop() {
	close(d.done)
	d.wg.Wait()

	d.mu.Lock()
	d.queue = nil
	d.mu.Unlock()
}
