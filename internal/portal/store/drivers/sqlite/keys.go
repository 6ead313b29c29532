package sqlite

import (
	"context"
	"time"

	"github.com/openreport/portal/internal/portal/domain"
)

type keysRepo struct {
	db dbtx
}

func (r *keysRepo) CreateKey(ctx context.Context, k domain.OneTimeKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO aes_keys (key_id, key, issued_at, expires_at, consumed)
		VALUES (?, ?, ?, ?, ?)`,
		k.ID, k.Secret, k.IssuedAt, k.ExpiresAt, k.Consumed,
	)
	return err
}

// ConsumeKey is the single-use gate: one conditional UPDATE flips consumed
// and returns the secret, so two concurrent redemptions can never both
// succeed. The read-then-write form would race.
func (r *keysRepo) ConsumeKey(ctx context.Context, keyID string, now time.Time) (string, error) {
	var secret string
	err := r.db.QueryRowContext(ctx, `
		UPDATE aes_keys
		SET consumed = 1
		WHERE key_id = ? AND consumed = 0 AND expires_at > ?
		RETURNING key`,
		keyID, now,
	).Scan(&secret)
	if err != nil {
		return "", mapNotFound(err)
	}
	return secret, nil
}

func (r *keysRepo) DeleteKey(ctx context.Context, keyID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM aes_keys WHERE key_id = ?`, keyID)
	return err
}

func (r *keysRepo) DeleteExpiredKeys(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM aes_keys WHERE expires_at <= ? OR consumed = 1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
