package store

import (
	"context"
	"errors"
	"time"

	"github.com/yli59577/puyuann/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Sub-repositories are exposed as methods so a Tx
// hands out the same repos bound to the transaction.
type Store interface {
	Accounts() Accounts
	Tickets() Tickets
	Profiles() Profiles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// Create inserts a new account. A duplicate email yields ErrAlreadyExists.
	Create(ctx context.Context, a domain.Account) error

	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByID(ctx context.Context, id string) (domain.Account, error)

	// Update overwrites every mutable column of the row keyed by a.ID.
	// Last writer wins.
	Update(ctx context.Context, a domain.Account) error

	Delete(ctx context.Context, id string) error

	// FindReclaimable lists unverified accounts whose deadline is <= now.
	FindReclaimable(ctx context.Context, now time.Time) ([]domain.Account, error)

	// DeleteIfReclaimable deletes the account only if it is still unverified
	// with a deadline <= now, reporting whether a row was removed. This is
	// the sweeper's race-free delete.
	DeleteIfReclaimable(ctx context.Context, id string, now time.Time) (bool, error)

	// ReopenPending replaces the credential and deadline of an account only
	// while it is still unverified. Returns false if it was verified
	// in the meantime.
	ReopenPending(ctx context.Context, id, credentialHash string, deadline, now time.Time) (bool, error)

	// SetCredential replaces only the credential hash and the must-change
	// flag, leaving verification state to concurrent writers. A missing id
	// yields ErrNotFound.
	SetCredential(ctx context.Context, id, credentialHash string, mustChange bool, now time.Time) error

	// MarkVerified sets verified and clears the deadline for email.
	MarkVerified(ctx context.Context, email string, now time.Time) error
}

type Tickets interface {
	Create(ctx context.Context, t domain.VerificationTicket) error

	// FindLatestUnconsumed returns the most recently issued unconsumed ticket
	// for email whose code matches exactly, expired or not.
	FindLatestUnconsumed(ctx context.Context, email, code string) (domain.VerificationTicket, error)

	// MarkConsumed flips consumed for an unconsumed ticket. Returns false if
	// another caller consumed it first.
	MarkConsumed(ctx context.Context, id string) (bool, error)

	// PurgeExpiredBefore deletes tickets whose expiry is before cutoff.
	PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Profiles is the contract the identity core needs from the profile owner.
type Profiles interface {
	// EnsureStubFor creates a profile row if none exists.
	EnsureStubFor(ctx context.Context, p domain.Profile) error
	Get(ctx context.Context, accountID string) (domain.Profile, error)
	DeleteFor(ctx context.Context, accountID string) error
}
