// Package store persists users, their session tokens and their tasks.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when a record does not exist, is not owned by
	// the caller, or its id is malformed
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when another user already has the email
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidCredentials is returned by FindByCredentials for any mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Options tunes a store
type Options struct {
	// BcryptCost is the password hashing work factor; bcrypt.DefaultCost if zero
	BcryptCost int
	// Now is the clock used for timestamps; time.Now if nil
	Now func() time.Time
}

type base struct {
	db   *sqlx.DB
	bind int
	now  func() time.Time
}

func newBase(db *sqlx.DB, opts Options) base {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return base{
		db:   db,
		bind: sqlx.BindType(db.DriverName()),
		now:  func() time.Time { return now().UTC() },
	}
}

// q rewrites the ? placeholders for the connection's driver
func (b base) q(query string) string {
	return sqlx.Rebind(b.bind, query)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic
func (b base) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func hashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
