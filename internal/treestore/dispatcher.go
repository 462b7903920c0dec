package treestore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var errDispatcherClosed = errors.New("dispatcher closed")

// call is one queued remote write
type call struct {
	op     string
	nodeID string
	fn     func(ctx context.Context) error
}

// dispatcher runs remote calls one at a time in FIFO order on a single
// worker goroutine. The queue is unbounded so enqueue never blocks a
// transition holding the store lock.
type dispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []call
	closed  bool
	done    chan struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *slog.Logger
}

func newDispatcher(logger *slog.Logger, timeout time.Duration) *dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &dispatcher{
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		logger:  logger,
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

func (d *dispatcher) enqueue(c call) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("remote call dropped after close", "op", c.op, "node_id", c.nodeID)
		return false
	}
	d.pending = append(d.pending, c)
	d.cond.Signal()
	return true
}

func (d *dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.pending) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		c := d.pending[0]
		d.pending[0] = call{}
		d.pending = d.pending[1:]
		d.mu.Unlock()

		d.execute(c)
	}
}

func (d *dispatcher) execute(c call) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	if err := c.fn(ctx); err != nil {
		d.logger.Error("remote propagation failed",
			"op", c.op,
			"node_id", c.nodeID,
			"error", err,
		)
		return
	}
	d.logger.Debug("remote propagated", "op", c.op, "node_id", c.nodeID)
}

// flush waits for a barrier queued behind every call issued so far
func (d *dispatcher) flush(ctx context.Context) error {
	reached := make(chan struct{})
	barrier := call{op: "flush", fn: func(context.Context) error {
		close(reached)
		return nil
	}}
	if !d.enqueue(barrier) {
		return errDispatcherClosed
	}

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting calls and waits for the queue to drain. When ctx
// ends first, the in-flight call is cancelled and the rest are abandoned.
func (d *dispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return nil
	}
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.mu.Lock()
		dropped := len(d.pending)
		d.pending = nil
		d.mu.Unlock()
		d.cancel()
		<-d.done
		if dropped > 0 {
			d.logger.Warn("remote calls abandoned on close", "count", dropped)
		}
		return ctx.Err()
	}
}
