package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/yli59577/puyuann/internal/identity/domain"
	"github.com/yli59577/puyuann/internal/identity/store"
	"github.com/yli59577/puyuann/pkg/clockx"
	"github.com/yli59577/puyuann/pkg/cryptox"
	"github.com/yli59577/puyuann/pkg/idx"
)

// DefaultCodeWindow is how long an issued code stays usable.
const DefaultCodeWindow = 10 * time.Minute

// CodeDigits is the length of verification codes.
const CodeDigits = otp.DigitsSix

// VerificationLedger issues and consumes one-time verification codes.
//
// Issuing never invalidates earlier codes. Each outstanding code stays
// valid until it is consumed or its window closes.
type VerificationLedger struct {
	Store  store.Store
	Clock  clockx.Clock
	Window time.Duration
}

func (l *VerificationLedger) window() time.Duration {
	if l.Window <= 0 {
		return DefaultCodeWindow
	}
	return l.Window
}

// Issue creates a fresh ticket for email and returns its code.
func (l *VerificationLedger) Issue(ctx context.Context, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidRequest
	}

	code, err := cryptox.GenerateNumericCode(CodeDigits)
	if err != nil {
		return "", err
	}

	now := l.Clock.Now()
	ticket := domain.VerificationTicket{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.window()),
	}
	if err := l.Store.Tickets().Create(ctx, ticket); err != nil {
		return "", transient(err)
	}
	return code, nil
}

// Consume marks the newest matching ticket consumed if it is still inside
// its window. Codes compare as exact strings.
func (l *VerificationLedger) Consume(ctx context.Context, email, code string) (bool, error) {
	return l.consume(ctx, l.Store, email, code, l.Clock.Now())
}

// consume runs against st so callers can fold it into a wider transaction.
func (l *VerificationLedger) consume(ctx context.Context, st store.Store, email, code string, now time.Time) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || code == "" {
		return false, nil
	}

	ticket, err := st.Tickets().FindLatestUnconsumed(ctx, email, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, transient(err)
	}
	// Expired tickets stay unconsumed; they were never validly used.
	if !ticket.Usable(now) {
		return false, nil
	}

	ok, err := st.Tickets().MarkConsumed(ctx, ticket.ID)
	if err != nil {
		return false, transient(err)
	}
	return ok, nil
}
