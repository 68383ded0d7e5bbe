package domain

import (
	"strings"
	"time"
)

// Account is the authoritative identity record.
//
// Verified accounts never carry a VerificationDeadline. An unverified account
// whose deadline has passed is reclaimable by the sweeper.
type Account struct {
	ID                   string
	Email                string
	CredentialHash       string
	Alias                string
	Verified             bool
	VerificationDeadline *time.Time
	MustChangeCredential bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NormalizeEmail trims and lower-cases an address. All lookups and unique
// constraints operate on the normalised form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AliasFromEmail returns the local part of an address, used as the default
// display name.
func AliasFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// IsReclaimable reports whether the account is unverified and its deadline
// is at or before now.
func (a Account) IsReclaimable(now time.Time) bool {
	return !a.Verified && a.VerificationDeadline != nil && !a.VerificationDeadline.After(now)
}

// State classifies the account for registration decisions at time now.
func (a Account) State(now time.Time) RegistrationState {
	switch {
	case a.Verified:
		return StateVerified
	case a.IsReclaimable(now):
		return StateExpired
	default:
		return StatePending
	}
}
