package orchestrator

import (
	"context"
	"sync"
)

// pauseGate is the stage gate checked between pipeline stages. While closed,
// waiters block until the gate reopens; in-flight tasks are never interrupted
// since the gate is only consulted at stage boundaries.
type pauseGate struct {
	mu   sync.Mutex
	open chan struct{}
}

func newPauseGate() *pauseGate {
	g := &pauseGate{open: make(chan struct{})}
	close(g.open)
	return g
}

// pause closes the gate. Idempotent.
func (g *pauseGate) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
	}
}

// resume reopens the gate. Idempotent.
func (g *pauseGate) resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
	default:
		close(g.open)
	}
}

// wait blocks until the gate is open or the context expires.
func (g *pauseGate) wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		ch := g.open
		g.mu.Unlock()

		select {
		case <-ch:
			// The gate may have been re-closed between the snapshot and the
			// receive; re-check so a pause issued during a stage still gates
			// the next one.
			g.mu.Lock()
			stillOpen := false
			select {
			case <-g.open:
				stillOpen = true
			default:
			}
			g.mu.Unlock()
			if stillOpen {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
