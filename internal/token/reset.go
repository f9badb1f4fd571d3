package token

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for reset tickets
	"encoding/hex"  // hex encoding for raw tokens and digests
	"time"
)

// ResetTicket is a single-use password reset credential. The Raw field goes
// to the user by mail; only the SHA-256 hash of it is persisted, so a stolen
// database row cannot be replayed as a reset link.
type ResetTicket struct {
	Raw  string    // raw token string sent to the user
	Hash string    // SHA-256 hex digest stored on the principal
	Exp  time.Time // UTC expiration time
}

// NewResetTicket returns a fresh random reset ticket valid for ttlMin
// minutes. The raw value is 32 random bytes hex encoded.
func NewResetTicket(ttlMin int) (ResetTicket, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ResetTicket{}, err
	}
	raw := hex.EncodeToString(buf)
	return ResetTicket{
		Raw:  raw,
		Hash: HashResetRaw(raw),
		Exp:  time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}

// HashResetRaw returns the SHA-256 hash of a raw reset token as a hex
// string. Consumption re-hashes the submitted token and matches it against
// the stored digest.
func HashResetRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
