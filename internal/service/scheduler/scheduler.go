package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned when cancelling a job that does not exist or
// has already fired.
var ErrJobNotFound = errors.New("scheduled job not found")

const fireTimeout = 30 * time.Second

// Trigger is invoked once when a delivery's pickup time is reached.
type Trigger interface {
	Fire(ctx context.Context, deliveryID int64) error
}

type TriggerFunc func(ctx context.Context, deliveryID int64) error

func (f TriggerFunc) Fire(ctx context.Context, deliveryID int64) error {
	return f(ctx, deliveryID)
}

type SchedulerUseCase interface {
	Schedule(ctx context.Context, deliveryID int64, pickup time.Time) (string, error)
	Cancel(ctx context.Context, jobKey string) error
	Reschedule(ctx context.Context, jobKey string, deliveryID int64, pickup time.Time) (string, error)
}

// Scheduler persists one-shot delivery jobs and fires them on a cron engine.
// Jobs survive restarts: Start re-arms every job that has not fired yet.
type Scheduler struct {
	store   repository.JobRepository
	trigger Trigger
	cron    *cron.Cron
	logger  *slog.Logger

	mu         sync.Mutex
	entries    map[string]cron.EntryID
	byDelivery map[int64]string
}

func NewScheduler(store repository.JobRepository, trigger Trigger, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	return &Scheduler{
		store:      store,
		trigger:    trigger,
		cron:       cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger:     logger,
		entries:    make(map[string]cron.EntryID),
		byDelivery: make(map[int64]string),
	}
}

// Start runs the cron engine and arms the jobs left pending by a previous
// run. Jobs whose fire time has passed fire immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()

	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending jobs: %w", err)
	}
	now := time.Now()
	for _, job := range pending {
		if job.FireAt.Before(now) {
			s.logger.Info("firing missed job", "job_key", job.Key, "delivery_id", job.DeliveryID, "fire_at", job.FireAt)
		}
		s.arm(job)
	}

	s.logger.Info("scheduler started", "pending_jobs", len(pending))
	return nil
}

// Stop halts the engine and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) Schedule(ctx context.Context, deliveryID int64, pickup time.Time) (string, error) {
	job := domain.Job{
		Key:        uuid.NewString(),
		DeliveryID: deliveryID,
		FireAt:     pickup,
	}
	if err := s.store.Create(ctx, &job); err != nil {
		return "", fmt.Errorf("persist job for delivery %d: %w", deliveryID, err)
	}

	s.arm(job)
	s.logger.Info("job scheduled", "job_key", job.Key, "delivery_id", deliveryID, "fire_at", pickup)
	return job.Key, nil
}

func (s *Scheduler) Cancel(ctx context.Context, jobKey string) error {
	s.disarm(jobKey)

	if err := s.store.Delete(ctx, jobKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("cancel job %s: %w", jobKey, ErrJobNotFound)
		}
		return fmt.Errorf("cancel job %s: %w", jobKey, err)
	}

	s.logger.Info("job cancelled", "job_key", jobKey)
	return nil
}

// Reschedule cancels jobKey and schedules a new job for pickup. When jobKey
// has already fired or been cancelled it returns ErrJobNotFound and arms
// nothing, so a delivery is never triggered twice. An empty jobKey only
// schedules.
func (s *Scheduler) Reschedule(ctx context.Context, jobKey string, deliveryID int64, pickup time.Time) (string, error) {
	if jobKey != "" {
		if err := s.Cancel(ctx, jobKey); err != nil {
			return "", err
		}
	}
	return s.Schedule(ctx, deliveryID, pickup)
}

// JobKeyFor returns the armed job of a delivery.
func (s *Scheduler) JobKeyFor(deliveryID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.byDelivery[deliveryID]
	return key, ok
}

func (s *Scheduler) arm(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[job.Key]; ok {
		return
	}
	id := s.cron.Schedule(newOneShot(job.FireAt), cron.FuncJob(func() { s.fire(job) }))
	s.entries[job.Key] = id
	s.byDelivery[job.DeliveryID] = job.Key
}

func (s *Scheduler) disarm(jobKey string) {
	s.mu.Lock()
	id, ok := s.entries[jobKey]
	delete(s.entries, jobKey)
	for deliveryID, key := range s.byDelivery {
		if key == jobKey {
			delete(s.byDelivery, deliveryID)
		}
	}
	s.mu.Unlock()

	if ok {
		s.cron.Remove(id)
	}
}

func (s *Scheduler) fire(job domain.Job) {
	defer s.disarm(job.Key)

	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	log := s.logger.With("job_key", job.Key, "delivery_id", job.DeliveryID)

	claimed, err := s.store.MarkFired(ctx, job.Key, time.Now())
	if err != nil {
		log.Error("claim job", "error", err)
		return
	}
	if !claimed {
		log.Info("job already fired or cancelled, skipping")
		return
	}

	if err := s.trigger.Fire(ctx, job.DeliveryID); err != nil {
		log.Error("fire job", "error", err)
		return
	}
	log.Info("job fired", "late_by", time.Since(job.FireAt).Round(time.Millisecond))
}

var _ SchedulerUseCase = (*Scheduler)(nil)

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
