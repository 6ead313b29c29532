package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/idx"
)

type fakeMailer struct {
	mu        sync.Mutex
	authCodes []string // "email|code|inquiry"
	replies   []string // "email|inquiry"
	fail      error
}

func (m *fakeMailer) SendAuthCodeEmail(_ context.Context, email, authCode, inquiryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.authCodes = append(m.authCodes, email+"|"+authCode+"|"+inquiryID)
	return nil
}

func (m *fakeMailer) SendReplyEmail(_ context.Context, email, inquiryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.replies = append(m.replies, email+"|"+inquiryID)
	return nil
}

type fakeAlerter struct {
	mu       sync.Mutex
	notified []string // admin ids
	failFor  map[string]error
}

func (a *fakeAlerter) NotifyAdmin(_ context.Context, adminID, _, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.failFor[adminID]; err != nil {
		return err
	}
	a.notified = append(a.notified, adminID)
	return nil
}

func newOutboxService(st store.Store, mail *fakeMailer, alerter *fakeAlerter) *service.OutboxService {
	return &service.OutboxService{
		Store:    st,
		Mail:     mail,
		Alerter:  alerter,
		WorkerID: "test-worker",
	}
}

func enqueue(t *testing.T, st store.Store, jobType string, payload any) string {
	t.Helper()
	raw, err := domain.EncodeJobPayload(jobType, payload)
	require.NoError(t, err)

	now := time.Now().UTC()
	job := domain.OutboxJob{
		ID:            idx.New().String(),
		Type:          jobType,
		Payload:       raw,
		Status:        domain.JobStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Outbox().EnqueueJob(context.Background(), job))
	return job.ID
}

func TestOutboxService_DispatchesBothEmailTypes(t *testing.T) {
	st := newTestStore(t)
	mail := &fakeMailer{}
	svc := newOutboxService(st, mail, &fakeAlerter{})
	ctx := context.Background()

	enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})
	enqueue(t, st, domain.JobReplyUserEmail, domain.ReplyUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", ReplyTitle: "Re", ReplyContent: "Done",
	})

	res, err := svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 2, res.OK)
	require.Zero(t, res.Failed)

	require.Equal(t, []string{"a@example.com|ABC123|inq-1"}, mail.authCodes)
	require.Equal(t, []string{"a@example.com|inq-1"}, mail.replies)

	// Sent jobs are terminal and no longer due.
	jobs, err := st.Outbox().ListDueJobs(ctx, time.Now().UTC().Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestOutboxService_FailureReschedulesWithBackoff(t *testing.T) {
	st := newTestStore(t)
	mail := &fakeMailer{fail: errors.New("smtp down")}
	svc := newOutboxService(st, mail, &fakeAlerter{})
	ctx := context.Background()

	jobID := enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})

	before := time.Now().UTC()
	res, err := svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)
	require.Equal(t, 1, res.Failed)

	job, err := st.Outbox().GetJobByID(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusPending, job.Status)
	require.Equal(t, 1, job.Attempts)
	require.Contains(t, job.LastError, "smtp down")
	require.WithinDuration(t, before.Add(5*time.Minute), job.NextAttemptAt, 5*time.Second)
	require.Nil(t, job.LockedAt)

	// Not due again until the backoff elapses.
	res, err = svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, res.Processed)
}

func TestOutboxService_BackoffMonotonicAndCapped(t *testing.T) {
	require.Equal(t, 5*time.Minute, service.JobBackoff(1))
	require.Equal(t, 30*time.Minute, service.JobBackoff(6))
	require.Equal(t, time.Hour, service.JobBackoff(12))
	require.Equal(t, time.Hour, service.JobBackoff(100))

	for n := 1; n < domain.MaxJobAttempts; n++ {
		require.LessOrEqual(t, service.JobBackoff(n), service.JobBackoff(n+1))
	}
}

func TestOutboxService_DeadLetterAfterMaxAttempts(t *testing.T) {
	st := newTestStore(t)
	mail := &fakeMailer{fail: errors.New("smtp down")}
	svc := newOutboxService(st, mail, &fakeAlerter{})
	ctx := context.Background()

	jobID := enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})

	// Push the job to one attempt shy of the cap.
	job, err := st.Outbox().ClaimJob(ctx, jobID, time.Now().UTC(), "test")
	require.NoError(t, err)
	require.NoError(t, st.Outbox().RescheduleJob(ctx, job.ID, domain.MaxJobAttempts-1, time.Now().UTC(), "smtp down", time.Now().UTC()))

	res, err := svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	job, err = st.Outbox().GetJobByID(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, job.Status)
	require.Equal(t, domain.MaxJobAttempts, job.Attempts)

	// Failed is terminal: the job never becomes due again.
	due, err := st.Outbox().ListDueJobs(ctx, time.Now().UTC().Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestOutboxService_UnknownTypeDeadLettersImmediately(t *testing.T) {
	st := newTestStore(t)
	svc := newOutboxService(st, &fakeMailer{}, &fakeAlerter{})
	ctx := context.Background()

	now := time.Now().UTC()
	job := domain.OutboxJob{
		ID:            idx.New().String(),
		Type:          "carrier_pigeon",
		Payload:       []byte(`{}`),
		Status:        domain.JobStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Outbox().EnqueueJob(ctx, job))

	res, err := svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	got, err := st.Outbox().GetJobByID(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, got.Status)
	require.Contains(t, got.LastError, "carrier_pigeon")
}

func TestOutboxService_FanOutIsolatesFailures(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, receive := range []bool{true, true, false} {
		require.NoError(t, st.Admins().UpsertAdmin(ctx, domain.Admin{
			ID:                   fmt.Sprintf("admin-%d", i),
			Email:                fmt.Sprintf("admin-%d@example.com", i),
			ReceiveNotifications: receive,
			CreatedAt:            now,
			UpdatedAt:            now,
		}))
	}

	alerter := &fakeAlerter{failFor: map[string]error{"admin-0": errors.New("gateway 502")}}
	svc := newOutboxService(st, &fakeMailer{}, alerter)

	jobID := enqueue(t, st, domain.JobSubmitAdminNotify, domain.SubmitAdminNotifyPayload{InquiryID: "inq-1"})

	res, err := svc.RunBatch(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.OK)

	// admin-1 got its alert despite admin-0 failing; admin-2 opted out.
	require.Equal(t, []string{"admin-1"}, alerter.notified)

	job, err := st.Outbox().GetJobByID(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusSent, job.Status)
}

func TestOutboxService_ConcurrentWorkersNoDoubleDelivery(t *testing.T) {
	st := newTestStore(t)
	mail := &fakeMailer{}
	ctx := context.Background()

	enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			worker := newOutboxService(st, mail, &fakeAlerter{})
			worker.WorkerID = fmt.Sprintf("worker-%d", i)
			_, _ = worker.RunBatch(ctx, 10)
		}(i)
	}
	wg.Wait()

	require.Len(t, mail.authCodes, 1)
}

func TestOutboxService_ReleaseStuckJobs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	jobID := enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})
	_, err := st.Outbox().ClaimJob(ctx, jobID, time.Now().UTC(), "crashed-worker")
	require.NoError(t, err)

	// A fresh claim is not stuck yet.
	n, err := st.Outbox().ReleaseStuckJobs(ctx, time.Now().UTC().Add(-15*time.Minute), time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, n)

	// With the cutoff in the future the claim counts as stale.
	n, err = st.Outbox().ReleaseStuckJobs(ctx, time.Now().UTC().Add(time.Minute), time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	job, err := st.Outbox().GetJobByID(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusPending, job.Status)
	require.Nil(t, job.LockedAt)
}
