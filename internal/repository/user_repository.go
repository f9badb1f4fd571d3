package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hkravch/tour-booking-api/internal/apperr"
	"github.com/hkravch/tour-booking-api/internal/model"
)

// userColumns is the full projection including credential fields. Only the
// auth flows read it; everything else goes through the generic store with a
// sanitized descriptor.
const userColumns = "id,name,email,photo,role,password_hash,password_changed_at,reset_token_hash,reset_expires_at,active,created_at,updated_at"

// UserRepo owns the credential-bearing queries the generic store must not
// expose: lookups that include the password hash and the reset ticket
// lifecycle. Soft-deleted users are filtered out of every read.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with an already-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash, role string) (uint64, error) {
	email = NormalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, passwordHash, role)
	if err != nil {
		return 0, apperr.FromDB(err, "user not found", "email already in use")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an active user by normalized email, hash included.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE email=? AND active=1 LIMIT 1",
		NormalizeEmail(email))
	return u, err
}

// GetActiveByID fetches an active user by id. Deactivated accounts read as
// missing so their tokens stop working immediately.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE id=? AND active=1 LIMIT 1", id)
	return u, err
}

// UpdatePassword stores a new hash, clears any outstanding reset ticket and
// backdates password_changed_at by one second so a token minted in the same
// instant as the rotation still reads as stale.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	changedAt := time.Now().UTC().Add(-time.Second)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=?, reset_token_hash=NULL, reset_expires_at=NULL WHERE id=?",
		passwordHash, changedAt, id)
	return err
}

// SetResetTicket stores the hashed reset token and its expiry.
func (r *UserRepo) SetResetTicket(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_expires_at=? WHERE id=?",
		tokenHash, expiresAt.UTC(), id)
	return err
}

// ClearResetTicket wipes the ticket fields. Used both after consumption and
// as the rollback when mail delivery fails mid-flow.
func (r *UserRepo) ClearResetTicket(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=NULL, reset_expires_at=NULL WHERE id=?", id)
	return err
}

// GetByValidResetTicket resolves the user holding an unexpired ticket with
// the given hash. sql.ErrNoRows covers both a wrong token and an expired
// one, so the two cases are indistinguishable to the caller.
func (r *UserRepo) GetByValidResetTicket(ctx context.Context, tokenHash string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash=? AND reset_expires_at > ? AND active=1 LIMIT 1",
		tokenHash, time.Now().UTC())
	return u, err
}

// UpdateProfile changes the fields a user may edit about themselves.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=? WHERE id=?",
		name, NormalizeEmail(email), id)
	return apperr.FromDB(err, "user not found", "email already in use")
}

// Deactivate soft-deletes the account; the row stays for referential
// integrity but disappears from every query.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET active=0 WHERE id=?", id)
	return err
}

// NormalizeEmail lower-cases and trims an email address so the unique key
// on users.email is case-insensitive in practice.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
