package domain

import "time"

// VerificationTicket is a one-time numeric code bound to an email address.
// The address need not belong to an account yet.
type VerificationTicket struct {
	ID        string
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// Usable reports whether the ticket can still be consumed at now. The window
// is inclusive: a ticket is usable when now == ExpiresAt.
func (t VerificationTicket) Usable(now time.Time) bool {
	return !t.Consumed && !now.After(t.ExpiresAt)
}
