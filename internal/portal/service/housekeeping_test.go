package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
)

func TestHousekeepingService_Sweep(t *testing.T) {
	st := newTestStore(t)
	svc := &service.HousekeepingService{Store: st}
	ctx := context.Background()
	now := time.Now().UTC()

	// An expired key, a live key, and a stuck outbox claim.
	require.NoError(t, st.Keys().CreateKey(ctx, domain.OneTimeKey{
		ID:        "deadkey0deadkey0deadkey0deadkey0",
		Secret:    "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-55 * time.Minute),
	}))
	keys := &service.KeyService{Store: st}
	live, err := keys.IssueKey(ctx)
	require.NoError(t, err)

	jobID := enqueue(t, st, domain.JobSubmitUserEmail, domain.SubmitUserEmailPayload{
		InquiryID: "inq-1", Email: "a@example.com", AuthCode: "ABC123",
	})
	_, err = st.Outbox().ClaimJob(ctx, jobID, now, "live-worker")
	require.NoError(t, err)

	svc.Sweep(ctx)

	// The expired key is gone, the live one survives.
	_, err = st.Keys().ConsumeKey(ctx, "deadkey0deadkey0deadkey0deadkey0", now.Add(-time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Keys().ConsumeKey(ctx, live.KeyID, now)
	require.NoError(t, err)

	// A fresh claim is not stale, so the job is untouched.
	job, err := st.Outbox().GetJobByID(ctx, jobID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusProcessing, job.Status)
}

func TestHousekeepingService_StartStop(t *testing.T) {
	st := newTestStore(t)
	svc := &service.HousekeepingService{Store: st}

	svc.Start(context.Background(), 50*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	svc.Stop()

	// Stop is idempotent.
	svc.Stop()
}
