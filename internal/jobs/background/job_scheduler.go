package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"orgmanager/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const SubscriptionExpiryJobName = "subscription-expiry"

// JobScheduler runs the periodic maintenance jobs of the service.
type JobScheduler struct {
	scheduler gocron.Scheduler
	expiry    *jobs.SubscriptionExpiryJob
	interval  time.Duration
	logger    zerolog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler driven by clock and registers its jobs.
func NewJobScheduler(expiry *jobs.SubscriptionExpiryJob, interval time.Duration, clock clockwork.Clock, logger zerolog.Logger) (*JobScheduler, error) {
	logger = logger.With().Str("component", "scheduler").Logger()

	scheduler, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(schedulerLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		expiry:    expiry,
		interval:  interval,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q is not registered", name)
	}
	return job.RunNow()
}

func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()
	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}

func (js *JobScheduler) registerJobs() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.expireSubscriptions),
		gocron.WithName(SubscriptionExpiryJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", SubscriptionExpiryJobName, err)
	}
	js.jobs[SubscriptionExpiryJobName] = expiryJob

	js.logger.Debug().Int("count", len(js.jobs)).Msg("registered background jobs")
	return nil
}

func (js *JobScheduler) expireSubscriptions() error {
	return js.expiry.Run(context.Background())
}

// schedulerLogger adapts zerolog to gocron.Logger.
type schedulerLogger struct {
	logger zerolog.Logger
}

func (l schedulerLogger) Debug(msg string, args ...any) { l.logger.Debug().Fields(args).Msg(msg) }
func (l schedulerLogger) Error(msg string, args ...any) { l.logger.Error().Fields(args).Msg(msg) }
func (l schedulerLogger) Info(msg string, args ...any)  { l.logger.Info().Fields(args).Msg(msg) }
func (l schedulerLogger) Warn(msg string, args ...any)  { l.logger.Warn().Fields(args).Msg(msg) }
