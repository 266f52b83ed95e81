// Package jobs runs background maintenance on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Name() string
	// Schedule is a cron spec; empty means on-demand only.
	Schedule() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Schedule() string              { return j.schedule }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

// Func adapts a plain function to Job.
func Func(name, schedule string, run func(ctx context.Context) error) Job {
	return funcJob{name: name, schedule: schedule, run: run}
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

func NewScheduler(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
}

func (s *Scheduler) Register(job Job) error {
	spec := job.Schedule()
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.execute(job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		logrus.WithFields(logrus.Fields{"job": job.Name(), "schedule": spec}).Info("job scheduled")
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) execute(job Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := logrus.WithField("job", job.Name())
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.WithError(err).Error("job failed")
		return
	}
	log.WithField("took", time.Since(start)).Info("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
