package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrLoopClosed is returned when submitting to a stopped loop
var ErrLoopClosed = errors.New("room loop closed")

// Op is a unit of work run against the registry on the loop goroutine
type Op func(r *Registry)

// Loop serializes every call into a Registry onto one goroutine
type Loop struct {
	registry *Registry
	ops      chan Op
	done     chan struct{}
	stopped  chan struct{}
	closeOne sync.Once
	logger   *slog.Logger
}

// NewLoop creates a loop for the registry. Call Run to start it.
func NewLoop(registry *Registry, logger *slog.Logger) *Loop {
	return &Loop{
		registry: registry,
		ops:      make(chan Op, 256),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		logger:   logger.With(slog.String("component", "room-loop"), slog.String("room", string(registry.Code()))),
	}
}

// Run processes submitted ops until Close is called or ctx ends. Ops
// queued before the loop stops are run before Run returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	l.logger.Info("room loop started")
	for {
		select {
		case op := <-l.ops:
			l.apply(op)
		case <-ctx.Done():
			l.Close()
			l.stop("context done")
			return
		case <-l.done:
			l.stop("closed")
			return
		}
	}
}

// stop runs the ops still queued once the loop no longer accepts new ones
func (l *Loop) stop(reason string) {
	drained := 0
	for {
		select {
		case op := <-l.ops:
			l.apply(op)
			drained++
		default:
			l.logger.Info("room loop stopped",
				slog.String("reason", reason),
				slog.Int("drained", drained),
			)
			return
		}
	}
}

// apply runs one op, containing panics so the loop keeps serving the room
func (l *Loop) apply(op Op) {
	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("panic in room op", slog.Any("panic", rec))
		}
	}()
	op(l.registry)
}

// Submit queues an op without waiting for it to run. Ops from one caller
// run in submission order.
func (l *Loop) Submit(op Op) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.ops <- op:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Do runs an op and waits for it to finish
func (l *Loop) Do(ctx context.Context, op Op) error {
	finished := make(chan struct{})
	err := l.Submit(func(r *Registry) {
		defer close(finished)
		op(r)
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// Close stops the loop. Ops already queued still run.
func (l *Loop) Close() {
	l.closeOne.Do(func() { close(l.done) })
}

// Stopped is closed once Run has returned
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

// Registry returns the registry served by the loop. Only call its methods
// from an Op.
func (l *Loop) Registry() *Registry {
	return l.registry
}
