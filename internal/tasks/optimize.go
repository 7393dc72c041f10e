package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"taskmind-backend/internal/models"
)

type OptimizeResult struct {
	// Count is the number of tasks the sweep processed, failed ones included.
	Count  int
	Failed int
}

// OptimizeAll re-classifies every task from its title and description alone
// and stores the new priority, status, category and reason. Existing values
// are not consulted. Rows are handled by a bounded pool of workers and a
// failure on one row does not stop the others.
func (s *Service) OptimizeAll(ctx context.Context) (OptimizeResult, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return OptimizeResult{}, storeErr("list tasks", err)
	}
	if len(all) == 0 {
		return OptimizeResult{}, nil
	}

	// the sweep outlives a disconnected HTTP caller; a cancelled context would
	// turn every remaining classification into the fallback
	ctx = context.WithoutCancel(ctx)

	workers := s.workers
	if workers > len(all) {
		workers = len(all)
	}

	var (
		jobs      = make(chan models.Task)
		wg        sync.WaitGroup
		processed atomic.Int64
		failed    atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if err := s.optimizeOne(ctx, t); err != nil {
					s.logger.Errorf("optimize task %d: %v", t.ID, err)
					failed.Add(1)
				}
				processed.Add(1)
			}
		}()
	}
	for _, t := range all {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	res := OptimizeResult{Count: int(processed.Load()), Failed: int(failed.Load())}
	s.logger.Infof("optimize sweep done: %d processed, %d failed, %d workers", res.Count, res.Failed, workers)
	return res, nil
}

func (s *Service) optimizeOne(ctx context.Context, t models.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	e := s.classifier.Classify(ctx, models.TaskInput{Title: t.Title, Description: t.Description})

	reason := models.StringValue(e.Reason)
	category := e.Category
	f := models.Fields{
		Priority: &e.Priority,
		Status:   &e.Status,
		Category: &category,
		Reason:   &reason,
	}
	n, err := s.store.Update(ctx, t.ID, f)
	if err != nil {
		return storeErr("update task", err)
	}
	if n == 0 {
		// deleted while the sweep was running
		return &NotFoundError{ID: t.ID}
	}
	return nil
}
