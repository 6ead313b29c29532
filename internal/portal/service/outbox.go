package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/idx"
	"github.com/openreport/portal/pkg/slogx"
)

// EmailSender delivers reporter-facing mail. Satisfied by notify.Mailer.
type EmailSender interface {
	SendAuthCodeEmail(ctx context.Context, email, authCode, inquiryID string) error
	SendReplyEmail(ctx context.Context, email, inquiryID string) error
}

// AdminAlerter delivers a new-inquiry alert to one admin. Satisfied by
// notify.AdminNotifier.
type AdminAlerter interface {
	NotifyAdmin(ctx context.Context, adminID, adminEmail, inquiryID string) error
}

// staleClaimAge is how long a job may sit in processing before housekeeping
// assumes its worker died and requeues it.
const staleClaimAge = 15 * time.Minute

// OutboxService drains the notification outbox. Jobs are claimed one at a
// time with an atomic conditional update, so any number of workers (in-process
// ticker, cron-triggered HTTP endpoint, or both) can run concurrently without
// double delivery.
type OutboxService struct {
	Store    store.Store
	Mail     EmailSender
	Alerter  AdminAlerter
	WorkerID string // identifies this worker in locked_by, defaults per process

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// JobResult reports the outcome of one dispatched job.
type JobResult struct {
	JobID  string `json:"job_id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchResult summarizes one worker pass.
type BatchResult struct {
	Processed int         `json:"processed"`
	OK        int         `json:"ok"`
	Failed    int         `json:"failed"`
	Results   []JobResult `json:"results,omitempty"`
}

// RunBatch claims and dispatches up to limit due jobs. Jobs another worker
// claims first are skipped silently. A dispatch failure reschedules the job
// with backoff, or dead-letters it once the attempt cap is hit; either way
// the batch keeps going.
func (s *OutboxService) RunBatch(ctx context.Context, limit int) (BatchResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	due, err := s.Store.Outbox().ListDueJobs(ctx, now, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list due jobs: %w", err)
	}

	var res BatchResult
	for _, candidate := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		job, err := s.Store.Outbox().ClaimJob(ctx, candidate.ID, time.Now().UTC(), s.workerID())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // another worker got there first
			}
			return res, fmt.Errorf("failed to claim job %s: %w", candidate.ID, err)
		}

		res.Processed++
		if dispatchErr := s.dispatch(ctx, job); dispatchErr != nil {
			res.Failed++
			res.Results = append(res.Results, JobResult{
				JobID: job.ID, Type: job.Type, Status: "retrying", Error: dispatchErr.Error(),
			})
			s.recordFailure(ctx, job, dispatchErr)
			continue
		}

		if err := s.Store.Outbox().MarkJobSent(ctx, job.ID, time.Now().UTC()); err != nil {
			log.Error("failed to mark job sent", slog.String("job_id", job.ID), slog.Any("error", err))
			res.Failed++
			res.Results = append(res.Results, JobResult{
				JobID: job.ID, Type: job.Type, Status: "unconfirmed", Error: err.Error(),
			})
			continue
		}
		res.OK++
		res.Results = append(res.Results, JobResult{JobID: job.ID, Type: job.Type, Status: "sent"})
	}

	if res.Processed > 0 {
		log.Info("outbox batch complete",
			slog.Int("processed", res.Processed),
			slog.Int("ok", res.OK),
			slog.Int("failed", res.Failed),
		)
	}
	return res, nil
}

func (s *OutboxService) dispatch(ctx context.Context, job domain.OutboxJob) error {
	switch job.Type {
	case domain.JobSubmitUserEmail:
		var p domain.SubmitUserEmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return permanentError{fmt.Errorf("bad %s payload: %w", job.Type, err)}
		}
		return s.Mail.SendAuthCodeEmail(ctx, p.Email, p.AuthCode, p.InquiryID)

	case domain.JobReplyUserEmail:
		var p domain.ReplyUserEmailPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return permanentError{fmt.Errorf("bad %s payload: %w", job.Type, err)}
		}
		return s.Mail.SendReplyEmail(ctx, p.Email, p.InquiryID)

	case domain.JobSubmitAdminNotify:
		var p domain.SubmitAdminNotifyPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return permanentError{fmt.Errorf("bad %s payload: %w", job.Type, err)}
		}
		return s.fanOut(ctx, p.InquiryID)

	default:
		return permanentError{fmt.Errorf("unknown job type %q", job.Type)}
	}
}

// fanOut alerts every subscribed admin about a new inquiry, one goroutine
// per admin. Per-admin failures are logged and swallowed: the job succeeds
// once the roster was fetched and every dispatch attempted, so one dead
// admin endpoint can't starve the rest with endless retries.
func (s *OutboxService) fanOut(ctx context.Context, inquiryID string) error {
	log := slogx.FromContext(ctx)

	admins, err := s.Store.Admins().ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	var wg sync.WaitGroup
	for _, admin := range admins {
		if !admin.ReceiveNotifications {
			continue
		}
		wg.Add(1)
		go func(a domain.Admin) {
			defer wg.Done()
			if err := s.Alerter.NotifyAdmin(ctx, a.ID, a.Email, inquiryID); err != nil {
				log.Warn("admin notification failed",
					slog.String("admin_id", a.ID),
					slog.String("inquiry_id", inquiryID),
					slog.Any("error", err),
				)
			}
		}(admin)
	}
	wg.Wait()
	return nil
}

// permanentError marks a dispatch failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// recordFailure reschedules the job with backoff or dead-letters it. Backoff
// is linear in attempts, capped at an hour; a permanently malformed job goes
// straight to failed.
func (s *OutboxService) recordFailure(ctx context.Context, job domain.OutboxJob, dispatchErr error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()
	attempts := job.Attempts + 1

	var perm permanentError
	if errors.As(dispatchErr, &perm) || attempts >= domain.MaxJobAttempts {
		if err := s.Store.Outbox().MarkJobFailed(ctx, job.ID, attempts, dispatchErr.Error(), now); err != nil {
			log.Error("failed to dead-letter job", slog.String("job_id", job.ID), slog.Any("error", err))
			return
		}
		log.Error("outbox job dead-lettered",
			slog.String("job_id", job.ID),
			slog.String("type", job.Type),
			slog.Int("attempts", attempts),
			slog.Any("error", dispatchErr),
		)
		return
	}

	next := now.Add(JobBackoff(attempts))
	if err := s.Store.Outbox().RescheduleJob(ctx, job.ID, attempts, next, dispatchErr.Error(), now); err != nil {
		log.Error("failed to reschedule job", slog.String("job_id", job.ID), slog.Any("error", err))
		return
	}
	log.Warn("outbox job rescheduled",
		slog.String("job_id", job.ID),
		slog.String("type", job.Type),
		slog.Int("attempts", attempts),
		slog.Time("next_attempt_at", next),
		slog.Any("error", dispatchErr),
	)
}

// JobBackoff returns the delay before retry n (1-based): 5 minutes per
// attempt, capped at an hour.
func JobBackoff(attempts int) time.Duration {
	d := time.Duration(attempts) * 5 * time.Minute
	if d > time.Hour {
		return time.Hour
	}
	return d
}

// Start launches the in-process worker loop, draining a batch every
// interval until Stop or context cancellation.
func (s *OutboxService) Start(ctx context.Context, interval time.Duration, batchSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		log := slogx.FromContext(ctx)
		log.Info("outbox worker started",
			slog.Duration("interval", interval),
			slog.Int("batch_size", batchSize),
		)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("outbox worker stopped")
				return
			case <-ticker.C:
				if _, err := s.RunBatch(ctx, batchSize); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("outbox batch failed", slog.Any("error", err))
				}
			}
		}
	}()
}

// Stop halts the worker loop and waits for the in-flight batch to finish.
func (s *OutboxService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *OutboxService) workerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WorkerID == "" {
		host, _ := os.Hostname()
		if host == "" {
			host = "worker"
		}
		s.WorkerID = fmt.Sprintf("%s-%s", host, idx.New())
	}
	return s.WorkerID
}
