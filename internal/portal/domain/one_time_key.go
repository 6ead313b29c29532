package domain

import "time"

// OneTimeKeyTTL is how long an issued key stays redeemable.
const OneTimeKeyTTL = 5 * time.Minute

// OneTimeKey is a single-use AES-256 session key. A key is redeemed at most
// once: redemption atomically flips Consumed before the secret is ever used
// to decrypt, and a consumed or expired key can never decrypt again.
type OneTimeKey struct {
	ID        string // unlinkable random id handed to the client
	Secret    string // 32 bytes, hex-encoded
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}
