package scheduler

import (
	"context"
	"time"
)

// Interval runs a job immediately and then on a fixed period until the
// context is cancelled. It drives recurring augmentation runs.
type Interval struct {
	period time.Duration
}

// NewInterval builds a runner with the given period.
func NewInterval(period time.Duration) *Interval {
	return &Interval{period: period}
}

// Run blocks until ctx is done, invoking job once per period. The first
// invocation happens right away.
func (i *Interval) Run(ctx context.Context, job func(time.Time)) {
	if job == nil || i.period <= 0 {
		return
	}

	ticker := time.NewTicker(i.period)
	defer ticker.Stop()

	job(time.Now())
	for {
		select {
		case t := <-ticker.C:
			job(t)
		case <-ctx.Done():
			return
		}
	}
}
