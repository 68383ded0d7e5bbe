package identitysdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yli59577/puyuann/pkg/httpx"
)

// Stable error codes returned in APIError.Code.
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeAlreadyRegistered    = "already_registered"
	ErrorCodeInvalidCredential    = "invalid_credential"
	ErrorCodeNotVerified          = "not_verified"
	ErrorCodeCodeInvalidOrExpired = "code_invalid_or_expired"
	ErrorCodeAccountNotFound      = "account_not_found"
	ErrorCodeTokenInvalid         = "token_invalid"
	ErrorCodeTransient            = "transient"
	ErrorCodeServerError          = "server_error"
)

// APIError is the failure body of every endpoint. It is written by the server
// and returned by the Client.
type APIError struct {
	StatusCode int               `json:"-"`
	Status     string            `json:"status"`
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	out := *e
	out.Status = StatusFailed
	_ = json.NewEncoder(w).Encode(out)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     StatusFailed,
		Code:       code,
		Message:    message,
	}
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == code
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     StatusFailed,
		Code:       ErrorCodeServerError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
