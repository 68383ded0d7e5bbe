package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yli59577/puyuann/internal/identity/domain"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/pkg/clockx"
	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/idx"
	"github.com/yli59577/puyuann/pkg/jwtx"
	"github.com/yli59577/puyuann/pkg/slogx"
)

const (
	// DefaultVerificationGrace is how long a new signup has to verify.
	DefaultVerificationGrace = 5 * time.Minute

	// TemporaryCredentialLength is the size of recovery passwords.
	TemporaryCredentialLength = 10

	// registerAttempts bounds retries when register races another writer.
	registerAttempts = 3
)

// NotificationSender delivers codes and credentials out of band. Delivery is
// best effort; an error is logged by the caller and never fails the operation.
type NotificationSender interface {
	DeliverVerificationCode(ctx context.Context, email, code string) error
	DeliverTemporaryCredential(ctx context.Context, email, credential string) error
}

// Session is the result of a successful login.
type Session struct {
	AccountID            string
	Token                string
	ExpiresAt            time.Time
	TTL                  time.Duration
	MustChangeCredential bool
}

// IdentityLifecycle drives the registration and credential state machine.
type IdentityLifecycle struct {
	Store       store.Store
	Credentials *CredentialService
	Ledger      *VerificationLedger
	Notifier    NotificationSender
	Clock       clockx.Clock

	Grace      time.Duration
	SessionTTL time.Duration
}

func (s *IdentityLifecycle) grace() time.Duration {
	if s.Grace <= 0 {
		return DefaultVerificationGrace
	}
	return s.Grace
}

func (s *IdentityLifecycle) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.SessionTTL
}

// Register creates an unverified account for email, or refreshes the
// credential and deadline of one that has not been verified yet.
func (s *IdentityLifecycle) Register(ctx context.Context, email, secret string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.Account{}, ErrInvalidRequest
	}
	hash, err := s.Credentials.Hash(secret)
	if err != nil {
		return domain.Account{}, err
	}

	for range registerAttempts {
		now := s.Clock.Now()
		deadline := now.Add(s.grace())

		existing, err := s.Store.Accounts().FindByEmail(ctx, email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			acc, err := s.createPending(ctx, email, hash, deadline, now)
			if errors.Is(err, store.ErrAlreadyExists) {
				// Lost a create race; take the existing-account branch.
				l.Debug("register create conflict, retrying", slogx.Email(email))
				continue
			}
			if err != nil {
				return domain.Account{}, transient(err)
			}
			l.Info("account registered", slog.String("account_id", acc.ID), slogx.Email(email))
			return acc, nil

		case err != nil:
			return domain.Account{}, transient(err)
		}

		if existing.Verified {
			return domain.Account{}, ErrAlreadyRegistered
		}

		ok, err := s.Store.Accounts().ReopenPending(ctx, existing.ID, hash, deadline, now)
		if err != nil {
			return domain.Account{}, transient(err)
		}
		if !ok {
			// Verified or reclaimed since we read it; look again.
			continue
		}

		existing.CredentialHash = hash
		existing.VerificationDeadline = &deadline
		existing.UpdatedAt = now
		l.Info("pending registration refreshed", slog.String("account_id", existing.ID), slogx.Email(email))
		return existing, nil
	}

	return domain.Account{}, transient(fmt.Errorf("register %s: too much contention", slogx.MaskEmail(email)))
}

func (s *IdentityLifecycle) createPending(ctx context.Context, email, hash string, deadline, now time.Time) (domain.Account, error) {
	acc := domain.Account{
		ID:                   idx.NewAt(now).String(),
		Email:                email,
		CredentialHash:       hash,
		Alias:                domain.AliasFromEmail(email),
		VerificationDeadline: &deadline,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		return tx.Profiles().EnsureStubFor(ctx, domain.Profile{
			AccountID: acc.ID,
			Name:      acc.Alias,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Account{}, err
	}
	return acc, nil
}

// RegistrationStatus reports where email sits in the signup state machine.
func (s *IdentityLifecycle) RegistrationStatus(ctx context.Context, email string) (domain.RegistrationState, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidRequest
	}
	acc, err := s.Store.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.StateAbsent, nil
		}
		return "", transient(err)
	}
	return acc.State(s.Clock.Now()), nil
}

// SendCode issues a verification code for email and hands it to the
// notifier. The code is returned whether or not delivery succeeded.
func (s *IdentityLifecycle) SendCode(ctx context.Context, email string) (string, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	code, err := s.Ledger.Issue(ctx, email)
	if err != nil {
		return "", err
	}

	if s.Notifier != nil {
		if err := s.Notifier.DeliverVerificationCode(ctx, email, code); err != nil {
			l.Warn("verification code delivery failed", slogx.Email(email), slog.Any("error", err))
			l.Debug("undelivered verification code", slogx.Email(email), slog.String("code", code))
		}
	}
	return code, nil
}

// CheckCode consumes code for email and, when an account exists, marks it
// verified in the same transaction.
func (s *IdentityLifecycle) CheckCode(ctx context.Context, email, code string) error {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return ErrInvalidRequest
	}

	now := s.Clock.Now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := s.Ledger.consume(ctx, tx, email, code, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCodeInvalidOrExpired
		}

		err = tx.Accounts().MarkVerified(ctx, email, now)
		if errors.Is(err, store.ErrNotFound) {
			// Codes may be checked before an account exists.
			return nil
		}
		return err
	})
	if err != nil {
		return transient(err)
	}

	l.Info("verification code accepted", slogx.Email(email))
	return nil
}

// Login checks the credential and issues a session token. Unknown emails
// and wrong secrets are indistinguishable to the caller.
func (s *IdentityLifecycle) Login(ctx context.Context, email, secret string) (Session, error) {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" || secret == "" {
		return Session{}, ErrInvalidRequest
	}

	acc, err := s.Store.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredential
		}
		return Session{}, transient(err)
	}

	if !s.Credentials.Verify(secret, acc.CredentialHash) {
		l.Info("login rejected", slog.String("account_id", acc.ID), slog.String("reason", "credential"))
		return Session{}, ErrInvalidCredential
	}
	if !acc.Verified {
		l.Info("login rejected", slog.String("account_id", acc.ID), slog.String("reason", "not_verified"))
		return Session{}, ErrNotVerified
	}

	token, expiresAt, err := s.Credentials.IssueToken(acc.ID, s.sessionTTL())
	if err != nil {
		return Session{}, err
	}

	l.Info("login succeeded", slog.String("account_id", acc.ID))
	return Session{
		AccountID:            acc.ID,
		Token:                token,
		ExpiresAt:            expiresAt,
		TTL:                  s.sessionTTL(),
		MustChangeCredential: acc.MustChangeCredential,
	}, nil
}

// ResetWithOldCredential replaces the credential after checking the old one.
func (s *IdentityLifecycle) ResetWithOldCredential(ctx context.Context, accountID, oldSecret, newSecret string) error {
	if accountID == "" || oldSecret == "" {
		return ErrInvalidRequest
	}
	acc, err := s.findByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.Credentials.Verify(oldSecret, acc.CredentialHash) {
		return ErrInvalidCredential
	}
	return s.replaceCredential(ctx, acc, newSecret, "old_credential")
}

// ResetWithToken replaces the credential of an account whose identity was
// already proven by a session token.
func (s *IdentityLifecycle) ResetWithToken(ctx context.Context, accountID, newSecret string) error {
	if accountID == "" {
		return ErrInvalidRequest
	}
	acc, err := s.findByID(ctx, accountID)
	if err != nil {
		return err
	}
	return s.replaceCredential(ctx, acc, newSecret, "session")
}

func (s *IdentityLifecycle) replaceCredential(ctx context.Context, acc domain.Account, newSecret, via string) error {
	hash, err := s.Credentials.Hash(newSecret)
	if err != nil {
		return err
	}

	if err := s.setCredential(ctx, s.Store, acc.ID, hash, false); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("credential reset",
		slog.String("account_id", acc.ID),
		slog.String("via", via),
	)
	return nil
}

// RecoverViaTemporaryCredential overwrites the credential with a random one
// and mails it. Possession of the mailbox is the only proof required, which
// is weaker than the code flow. Verification state is left as it is.
func (s *IdentityLifecycle) RecoverViaTemporaryCredential(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidRequest
	}

	acc, err := s.Store.Accounts().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return transient(err)
	}

	temp, err := cryptox.GeneratePassword(TemporaryCredentialLength)
	if err != nil {
		return err
	}
	hash, err := s.Credentials.Hash(temp)
	if err != nil {
		return err
	}

	if err := s.setCredential(ctx, s.Store, acc.ID, hash, true); err != nil {
		return err
	}

	l.Warn("temporary credential issued without code confirmation",
		slog.String("account_id", acc.ID),
		slogx.Email(email),
	)

	if s.Notifier != nil {
		if err := s.Notifier.DeliverTemporaryCredential(ctx, email, temp); err != nil {
			l.Error("temporary credential delivery failed", slog.String("account_id", acc.ID), slog.Any("error", err))
		}
	}
	return nil
}

// ResetWithCode completes a forgot-password flow: the emailed code proves
// the address, so the account also becomes verified.
func (s *IdentityLifecycle) ResetWithCode(ctx context.Context, email, code, newSecret string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return ErrInvalidRequest
	}
	hash, err := s.Credentials.Hash(newSecret)
	if err != nil {
		return err
	}

	now := s.Clock.Now()
	var accountID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		acc, err := tx.Accounts().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		ok, err := s.Ledger.consume(ctx, tx, email, code, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCodeInvalidOrExpired
		}

		accountID = acc.ID
		if err := tx.Accounts().SetCredential(ctx, acc.ID, hash, false, now); err != nil {
			return err
		}
		return tx.Accounts().MarkVerified(ctx, email, now)
	})
	if err != nil {
		return transient(err)
	}

	slogx.FromContext(ctx).Info("credential reset",
		slog.String("account_id", accountID),
		slog.String("via", "code"),
	)
	return nil
}

// AccountSummary loads the account behind a resolved session.
func (s *IdentityLifecycle) AccountSummary(ctx context.Context, accountID string) (domain.Account, error) {
	if accountID == "" {
		return domain.Account{}, ErrInvalidRequest
	}
	return s.findByID(ctx, accountID)
}

func (s *IdentityLifecycle) findByID(ctx context.Context, id string) (domain.Account, error) {
	acc, err := s.Store.Accounts().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, transient(err)
	}
	return acc, nil
}

// setCredential writes only the credential columns so a concurrent
// verification is never rolled back by a stale read.
func (s *IdentityLifecycle) setCredential(ctx context.Context, st store.Store, id, hash string, mustChange bool) error {
	if err := st.Accounts().SetCredential(ctx, id, hash, mustChange, s.Clock.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return transient(err)
	}
	return nil
}
