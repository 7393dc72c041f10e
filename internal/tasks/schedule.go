package tasks

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// ScheduleOptimize runs OptimizeAll on the given cron spec (standard five
// fields or descriptors such as "@every 1h") until the returned cron is stopped.
func ScheduleOptimize(spec string, svc *Service) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		res, err := svc.OptimizeAll(context.Background())
		if err != nil {
			svc.logger.Errorf("scheduled optimize failed: %v", err)
			return
		}
		svc.logger.Infof("scheduled optimize: %d tasks, %d failed", res.Count, res.Failed)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "optimize schedule %q", spec)
	}
	c.Start()
	return c, nil
}
