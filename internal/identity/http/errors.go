package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/pkg/httpx"
	"github.com/yli59577/puyuann/pkg/identitysdk"
	"github.com/yli59577/puyuann/pkg/slogx"
)

type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidRequest, http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, "the request is malformed or missing required fields"},
	{service.ErrAlreadyRegistered, http.StatusConflict, identitysdk.ErrorCodeAlreadyRegistered, "this email is already registered"},
	{service.ErrInvalidCredential, http.StatusUnauthorized, identitysdk.ErrorCodeInvalidCredential, "email or password is incorrect"},
	{service.ErrNotVerified, http.StatusForbidden, identitysdk.ErrorCodeNotVerified, "the account has not been verified"},
	{service.ErrCodeInvalidOrExpired, http.StatusBadRequest, identitysdk.ErrorCodeCodeInvalidOrExpired, "the verification code is invalid or expired"},
	{service.ErrAccountNotFound, http.StatusNotFound, identitysdk.ErrorCodeAccountNotFound, "account not found"},
	{service.ErrTokenInvalid, http.StatusUnauthorized, identitysdk.ErrorCodeTokenInvalid, "the access token is missing, invalid or expired"},
	{service.ErrTransient, http.StatusServiceUnavailable, identitysdk.ErrorCodeTransient, "temporarily unavailable, retry later"},
}

// writeServiceError maps a service failure kind onto its stable wire code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	for _, m := range errorMappings {
		if errors.Is(err, m.kind) {
			if m.status >= http.StatusInternalServerError {
				log.Error("request failed", slog.Any("error", err))
			}
			identitysdk.NewAPIError(m.status, m.code, m.message).WriteError(w)
			return
		}
	}

	log.Error("unexpected error", slog.Any("error", err))
	identitysdk.NewAPIError(http.StatusInternalServerError, identitysdk.ErrorCodeServerError, "internal server error").WriteError(w)
}

// decodeAndValidate reads a JSON body into dst and runs its Validate method,
// writing an invalid_request response and returning false on any problem.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface {
	Validate() error
}) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		identitysdk.NewAPIError(http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		return false
	}
	return validate(w, dst)
}

func validate(w http.ResponseWriter, v interface{ Validate() error }) bool {
	if err := v.Validate(); err != nil {
		apiErr := identitysdk.NewAPIError(http.StatusBadRequest, identitysdk.ErrorCodeInvalidRequest, "request validation failed")
		apiErr.Details = identitysdk.ValidationDetails(err)
		apiErr.WriteError(w)
		return false
	}
	return true
}
