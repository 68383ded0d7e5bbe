package identitysdk

// Envelope status values. Every response body carries one.
const (
	StatusOK     = "0"
	StatusFailed = "1"
)

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest carries a single address, for sending codes and for
// temporary-password recovery.
type EmailRequest struct {
	Email string `json:"email"`
}

// CheckCodeRequest is the body of POST /api/verification/check.
type CheckCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginRequest is the body of POST /api/auth.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordRequest is the body of POST /api/password/reset.
type ResetPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordRequest is the body of POST /api/password/change.
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ForgotConfirmRequest is the body of POST /api/password/forgot/confirm.
type ForgotConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ============================================================================
// Responses
// ============================================================================

// StatusResponse is returned by operations with nothing else to report.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type RegisterResponse struct {
	Status    string `json:"status"`
	AccountID string `json:"accountId"`
}

// RegistrationStatusResponse answers GET /api/register/check. An expired,
// unverified signup reports Exists=false.
type RegistrationStatusResponse struct {
	Status   string `json:"status"`
	Exists   bool   `json:"exists"`
	Verified bool   `json:"verified"`
}

type SendCodeResponse struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"` // only populated by dev deployments
}

type LoginResponse struct {
	Status             string `json:"status"`
	Token              string `json:"token"`
	TokenType          string `json:"tokenType"`
	ExpiresIn          int    `json:"expiresIn"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

type AccountResponse struct {
	Status             string `json:"status"`
	AccountID          string `json:"accountId"`
	Email              string `json:"email"`
	Alias              string `json:"alias"`
	Verified           bool   `json:"verified"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
