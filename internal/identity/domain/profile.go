package domain

import "time"

// Profile is the stub row owned by the health-data side of the system. The
// identity core only creates it on first registration and removes it when
// the account is reclaimed.
type Profile struct {
	AccountID string
	Name      string
	CreatedAt time.Time
}
