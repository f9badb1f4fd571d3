package token // package token provides session token, password and reset ticket helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/hkravch/tour-booking-api/internal/apperr"
)

// Session represents a signed JWT session token along with its expiry. The
// Token field contains the serialized JWT string. Session tokens are
// short-lived bearer credentials; validity is computed from the signature
// and claims, never stored server-side.
type Session struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is what VerifyToken extracts from a valid session token: the
// principal identifier and the issuance time. IssuedAt is compared against
// the principal's password-change timestamp to invalidate stale tokens.
type Claims struct {
	UserID   uint64
	IssuedAt time.Time
}

// Issue builds and signs an HS256 JWT for a principal. The JWT carries the
// standard claims: subject (sub), expiration (exp) and issued at (iat).
func Issue(secret string, userID uint64, ttlMin int) (Session, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, Exp: exp}, nil
}

// Verify validates the signature and expiry of a session token and returns
// its claims. Expiry maps to ExpiredToken; every other parse failure maps
// to InvalidToken so callers cannot distinguish why a bad token was bad.
func Verify(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.ErrExpiredToken
		}
		return Claims{}, apperr.ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, apperr.ErrInvalidToken
	}
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return Claims{}, apperr.ErrInvalidToken
	}
	iat, ok := mc["iat"].(float64)
	if !ok {
		return Claims{}, apperr.ErrInvalidToken
	}
	return Claims{UserID: uint64(sub), IssuedAt: time.Unix(int64(iat), 0).UTC()}, nil
}

// ChangedAfter reports whether a password rotation at changedAt invalidates
// a token issued at issuedAt. A nil changedAt means the password was never
// rotated, so nothing is invalidated.
func ChangedAfter(changedAt *time.Time, issuedAt time.Time) bool {
	if changedAt == nil {
		return false
	}
	return issuedAt.Unix() < changedAt.Unix()
}
