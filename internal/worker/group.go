package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Group воркеры закупки всех владельцев.
type Group struct {
	mu      sync.RWMutex
	workers map[int64]*PurchaseWorker
}

func NewGroup(workers ...*PurchaseWorker) *Group {
	g := &Group{workers: make(map[int64]*PurchaseWorker, len(workers))}

	for _, w := range workers {
		g.workers[w.UserID()] = w
	}

	return g
}

func (g *Group) Worker(userID int64) (*PurchaseWorker, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	w, ok := g.workers[userID]

	return w, ok
}

func (g *Group) UserIDs() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]int64, 0, len(g.workers))
	for id := range g.workers {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Run запускает все воркеры и блокируется до отмены контекста.
func (g *Group) Run(ctx context.Context) error {
	g.mu.RLock()

	var errs []error

	for _, w := range g.workers {
		if err := w.Start(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	g.mu.RUnlock()

	if err := errors.Join(errs...); err != nil {
		g.Stop()

		return err
	}

	<-ctx.Done()
	g.Stop()

	return nil
}

func (g *Group) Stop() {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var wg sync.WaitGroup

	for _, w := range g.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			w.Stop()
		}()
	}

	wg.Wait()
}
