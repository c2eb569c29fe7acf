package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/go-co-op/gocron/v2"
)

const (
	JobReschedule = "daily-reschedule"
	JobCleanup    = "retention-cleanup"

	jobTimeout = 10 * time.Minute
)

type DailyRescheduler interface {
	RunDaily(ctx context.Context) (*service.RescheduleReport, error)
}

type RetentionCleaner interface {
	Run(ctx context.Context) (*service.CleanupReport, error)
}

type Config struct {
	Location       *time.Location
	RescheduleCron string
	CleanupCron    string
}

// Scheduler runs the daily reschedule and cleanup in-process. Both jobs are
// also reachable over /cron for deployments that use an external scheduler.
type Scheduler struct {
	s gocron.Scheduler
}

func New(cfg Config, rescheduler DailyRescheduler, cleaner RetentionCleaner) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	// gocron prefixes every cron spec with CRON_TZ=<zone name>.
	if _, err := time.LoadLocation(loc.String()); err != nil {
		return nil, fmt.Errorf("scheduler location %q is not a named zone: %w", loc, err)
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	jobs := []struct {
		name string
		cron string
		run  func(ctx context.Context) (any, error)
	}{
		{JobReschedule, cfg.RescheduleCron, func(ctx context.Context) (any, error) { return rescheduler.RunDaily(ctx) }},
		{JobCleanup, cfg.CleanupCron, func(ctx context.Context) (any, error) { return cleaner.Run(ctx) }},
	}
	for _, j := range jobs {
		_, err := s.NewJob(
			gocron.CronJob(j.cron, false),
			gocron.NewTask(runJob, j.name, j.run),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule %s (%q): %w", j.name, j.cron, err)
		}
	}
	return &Scheduler{s: s}, nil
}

func runJob(name string, run func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	report, err := run(ctx)
	if err != nil {
		log.Printf("[Scheduler] %s failed after %s: %v", name, time.Since(start), err)
		return
	}
	log.Printf("[Scheduler] %s done in %s: %+v", name, time.Since(start), report)
}

func (s *Scheduler) Start() {
	s.s.Start()
	log.Printf("[Scheduler] started with %d jobs", len(s.s.Jobs()))
}

// RunNow triggers a registered job outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	for _, j := range s.s.Jobs() {
		if j.Name() == name {
			return j.RunNow()
		}
	}
	return fmt.Errorf("job %q not found", name)
}

func (s *Scheduler) JobNames() []string {
	jobs := s.s.Jobs()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name()
	}
	return names
}

func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}
