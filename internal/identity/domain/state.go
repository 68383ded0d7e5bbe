package domain

// RegistrationState is where an email sits in the sign-up state machine.
type RegistrationState string

const (
	StateAbsent   RegistrationState = "absent"
	StatePending  RegistrationState = "pending_verification"
	StateExpired  RegistrationState = "expired"
	StateVerified RegistrationState = "verified"
)

// Exists reports whether registration should treat the email as taken or
// in progress. Expired pending accounts count as absent.
func (s RegistrationState) Exists() bool {
	return s == StatePending || s == StateVerified
}
