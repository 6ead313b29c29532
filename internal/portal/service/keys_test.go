package service_test

import (
	"context"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
)

func TestKeyService_IssueAndRedeem(t *testing.T) {
	st := newTestStore(t)
	svc := &service.KeyService{Store: st}
	ctx := context.Background()

	issued, err := svc.IssueKey(ctx)
	require.NoError(t, err)
	require.Len(t, issued.KeyID, 32)
	require.Equal(t, int(domain.OneTimeKeyTTL.Seconds()), issued.ExpiresIn)

	raw, err := hex.DecodeString(issued.Secret)
	require.NoError(t, err)
	require.Len(t, raw, 32)

	secret, err := svc.RedeemKey(ctx, issued.KeyID)
	require.NoError(t, err)
	require.Equal(t, issued.Secret, secret)
}

func TestKeyService_SingleUse(t *testing.T) {
	st := newTestStore(t)
	svc := &service.KeyService{Store: st}
	ctx := context.Background()

	issued, err := svc.IssueKey(ctx)
	require.NoError(t, err)

	_, err = svc.RedeemKey(ctx, issued.KeyID)
	require.NoError(t, err)

	_, err = svc.RedeemKey(ctx, issued.KeyID)
	require.ErrorIs(t, err, service.ErrInvalidKey)
}

func TestKeyService_ConcurrentRedemption(t *testing.T) {
	st := newTestStore(t)
	svc := &service.KeyService{Store: st}
	ctx := context.Background()

	issued, err := svc.IssueKey(ctx)
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RedeemKey(ctx, issued.KeyID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, service.ErrInvalidKey)
		}
	}
	require.Equal(t, 1, wins)
}

func TestKeyService_ExpiredKeyRejected(t *testing.T) {
	st := newTestStore(t)
	svc := &service.KeyService{Store: st}
	ctx := context.Background()

	now := time.Now().UTC()
	expired := domain.OneTimeKey{
		ID:        "expiredexpiredexpiredexpired1234",
		Secret:    "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
		IssuedAt:  now.Add(-10 * time.Minute),
		ExpiresAt: now.Add(-5 * time.Minute),
	}
	require.NoError(t, st.Keys().CreateKey(ctx, expired))

	_, err := svc.RedeemKey(ctx, expired.ID)
	require.ErrorIs(t, err, service.ErrInvalidKey)

	// The failed redemption deletes the dead row outright.
	_, err = st.Keys().ConsumeKey(ctx, expired.ID, now.Add(-8*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestKeyService_UnknownKeyRejected(t *testing.T) {
	st := newTestStore(t)
	svc := &service.KeyService{Store: st}

	_, err := svc.RedeemKey(context.Background(), "nosuchkey")
	require.ErrorIs(t, err, service.ErrInvalidKey)

	_, err = svc.RedeemKey(context.Background(), "")
	require.ErrorIs(t, err, service.ErrInvalidKey)
}
