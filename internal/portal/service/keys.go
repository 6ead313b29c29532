package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/pkg/cryptox"
	"github.com/openreport/portal/pkg/slogx"
)

// ErrInvalidKey covers every way a one-time key can be unusable: missing,
// expired, consumed, or paired with undecryptable ciphertext. Callers get
// one generic error so failures cannot be used as an oracle.
var ErrInvalidKey = errors.New("invalid or expired encryption key")

// KeyService mints and redeems one-time session keys. A client fetches one
// key per submission and one per verification; a key decrypts exactly one
// request and is then dead.
type KeyService struct {
	Store store.Store
}

// IssuedKey is what the client receives: the id it echoes back and the
// secret it encrypts with.
type IssuedKey struct {
	KeyID     string
	Secret    string // hex-encoded 256-bit key
	ExpiresIn int    // seconds
}

// IssueKey mints a fresh key with a 5-minute expiry and persists it
// unconsumed. The id is random and carries no timestamp or ordering, so
// issued keys cannot be linked to each other or to a submission time.
func (s *KeyService) IssueKey(ctx context.Context) (IssuedKey, error) {
	log := slogx.FromContext(ctx)

	secret, err := cryptox.GenerateSessionKey()
	if err != nil {
		log.Error("failed to generate session key", slog.Any("error", err))
		return IssuedKey{}, err
	}

	keyID, err := randomKeyID()
	if err != nil {
		log.Error("failed to generate key id", slog.Any("error", err))
		return IssuedKey{}, err
	}

	now := time.Now().UTC()
	key := domain.OneTimeKey{
		ID:        keyID,
		Secret:    secret,
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.OneTimeKeyTTL),
		Consumed:  false,
	}

	if err := s.Store.Keys().CreateKey(ctx, key); err != nil {
		log.Error("failed to store one-time key", slog.Any("error", err))
		return IssuedKey{}, err
	}

	log.Debug("one-time key issued", slog.String("key_id", keyID))

	return IssuedKey{
		KeyID:     keyID,
		Secret:    secret,
		ExpiresIn: int(domain.OneTimeKeyTTL.Seconds()),
	}, nil
}

// RedeemKey consumes a key and returns its secret. The consume is a single
// atomic conditional update, so a second redemption (even concurrent with
// the first) always fails. A failed redemption deletes the row outright:
// spent keys don't accumulate and a dead key denies all further attempts.
func (s *KeyService) RedeemKey(ctx context.Context, keyID string) (string, error) {
	log := slogx.FromContext(ctx)

	if keyID == "" {
		return "", ErrInvalidKey
	}

	secret, err := s.Store.Keys().ConsumeKey(ctx, keyID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if delErr := s.Store.Keys().DeleteKey(ctx, keyID); delErr != nil {
				log.Warn("failed to delete dead key", slog.String("key_id", keyID), slog.Any("error", delErr))
			}
			log.Warn("key redemption rejected", slog.String("key_id", keyID))
			return "", ErrInvalidKey
		}
		log.Error("failed to redeem key", slog.Any("error", err))
		return "", err
	}

	return secret, nil
}

// randomKeyID returns 32 hex chars of pure randomness. ULIDs are avoided
// here on purpose; their embedded timestamp would link a key to its issue
// time.
func randomKeyID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
