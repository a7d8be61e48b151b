// Package scheduler owns the process-wide cron runner behind the nightly
// tournament sweep and the morning payment reminders.
package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

var (
	mu      sync.Mutex
	runner  gocron.Scheduler
	stopped bool
)

// Init builds the cron runner. Calling it again is a no-op; jobs are
// registered afterwards and only run once Start is called.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if runner != nil {
		return nil
	}

	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduled job panicked")
				}),
			),
		),
	)
	if err != nil {
		return err
	}
	runner = sched
	log.Info().Msg("Scheduler ready")
	return nil
}

// AddJob registers a job under a 5-field cron expression.
func AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	mu.Lock()
	defer mu.Unlock()
	if runner == nil {
		return nil, ErrNotInitialized
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()
	job, err := runner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			jobLogger.Debug().Msg("Job run started")
			task()
			jobLogger.Debug().Msg("Job run finished")
		}),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to schedule job")
		return nil, err
	}
	jobLogger.Info().Msg("Job scheduled")
	return job, nil
}

// Start begins running registered jobs.
func Start() error {
	mu.Lock()
	defer mu.Unlock()
	if runner == nil {
		return ErrNotInitialized
	}
	log.Info().Msg("Scheduler starting")
	runner.Start()
	return nil
}

// Stop shuts the runner down. Safe to call more than once and before Init.
func Stop() error {
	mu.Lock()
	defer mu.Unlock()
	if runner == nil || stopped {
		return nil
	}
	stopped = true
	log.Info().Msg("Scheduler stopping")
	return runner.Shutdown()
}
