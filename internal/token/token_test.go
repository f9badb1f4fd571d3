package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

const testSecret = "test-secret"

func TestIssueVerifyRoundtrip(t *testing.T) {
	sess, err := Issue(testSecret, 42, 15)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), sess.Exp, 5*time.Second)

	claims, err := Verify(testSecret, sess.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
}

func TestVerifyWrongSecret(t *testing.T) {
	sess, err := Issue(testSecret, 1, 15)
	require.NoError(t, err)

	_, err = Verify("other-secret", sess.Token)
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify(testSecret, "not.a.token")
	require.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	sess, err := Issue(testSecret, 1, -1)
	require.NoError(t, err)

	_, err = Verify(testSecret, sess.Token)
	require.ErrorIs(t, err, apperr.ErrExpiredToken)
}

func TestChangedAfter(t *testing.T) {
	issued := time.Now().UTC()

	require.False(t, ChangedAfter(nil, issued))

	before := issued.Add(-time.Hour)
	require.False(t, ChangedAfter(&before, issued))

	after := issued.Add(time.Hour)
	require.True(t, ChangedAfter(&after, issued))
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("pass1234", 4)
	require.NoError(t, err)
	require.NotEqual(t, "pass1234", hash)

	require.True(t, VerifyPassword(hash, "pass1234"))
	require.False(t, VerifyPassword(hash, "wrong-pass"))
}

func TestResetTicket(t *testing.T) {
	ticket, err := NewResetTicket(10)
	require.NoError(t, err)

	// 32 random bytes hex-encoded
	require.Len(t, ticket.Raw, 64)
	require.Len(t, ticket.Hash, 64)
	require.NotEqual(t, ticket.Raw, ticket.Hash)
	require.Equal(t, ticket.Hash, HashResetRaw(ticket.Raw))
	require.WithinDuration(t, time.Now().Add(10*time.Minute), ticket.Exp, 5*time.Second)

	other, err := NewResetTicket(10)
	require.NoError(t, err)
	require.NotEqual(t, ticket.Raw, other.Raw)
}
