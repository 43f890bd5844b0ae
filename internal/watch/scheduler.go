package watch

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// scheduler wraps gocron for the optional unconditional full-rebuild job.
// The task only enqueues a request; serialization stays with the compile
// worker.
type scheduler struct {
	inner gocron.Scheduler
}

func newScheduler(interval time.Duration, fire func()) (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fire),
		gocron.WithName("full-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("create full-rebuild job: %w", err)
	}
	return &scheduler{inner: s}, nil
}

func (s *scheduler) start() {
	s.inner.Start()
}

func (s *scheduler) stopAll() error {
	return s.inner.Shutdown()
}
