package http

import (
	"net/http"

	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/pkg/httpx"
	"github.com/yli59577/puyuann/pkg/identitysdk"
)

// PasswordHandler covers the four credential replacement paths.
type PasswordHandler struct {
	Lifecycle *service.IdentityLifecycle
}

// HandleReset replaces the password after checking the old one.
//
//	@Summary		Reset password
//	@Description	Replaces the password of the authenticated account. The current password must match.
//	@Tags			Passwords
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.ResetPasswordRequest	true	"Old and new password"
//	@Success		200		{object}	identitysdk.StatusResponse			"Password replaced"
//	@Failure		400		{object}	identitysdk.APIError				"Malformed request"
//	@Failure		401		{object}	identitysdk.APIError				"Invalid token or wrong old password"
//	@Failure		404		{object}	identitysdk.APIError				"Account no longer exists"
//	@Router			/api/password/reset [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrTokenInvalid)
		return
	}

	var req identitysdk.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Lifecycle.ResetWithOldCredential(r.Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, "password updated")
}

// HandleChange replaces the password on the strength of the session alone.
//
//	@Summary		Change password
//	@Description	Replaces the password of the authenticated account and clears the must-change flag. Used after logging in with a temporary password.
//	@Tags			Passwords
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.ChangePasswordRequest	true	"New password"
//	@Success		200		{object}	identitysdk.StatusResponse			"Password replaced"
//	@Failure		400		{object}	identitysdk.APIError				"Malformed request"
//	@Failure		401		{object}	identitysdk.APIError				"Invalid or missing token"
//	@Failure		404		{object}	identitysdk.APIError				"Account no longer exists"
//	@Router			/api/password/change [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrTokenInvalid)
		return
	}

	var req identitysdk.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Lifecycle.ResetWithToken(r.Context(), accountID, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, "password updated")
}

// HandleForgot mails a temporary password.
//
//	@Summary		Forgot password
//	@Description	Replaces the password with a generated temporary one, mails it, and flags the account so the next login must change it.
//	@Tags			Passwords
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.EmailRequest	true	"Email address"
//	@Success		200		{object}	identitysdk.StatusResponse	"Temporary password sent"
//	@Failure		400		{object}	identitysdk.APIError		"Malformed request"
//	@Failure		404		{object}	identitysdk.APIError		"No account for email"
//	@Failure		503		{object}	identitysdk.APIError		"Mail delivery failed"
//	@Router			/api/password/forgot [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Lifecycle.RecoverViaTemporaryCredential(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, "temporary password sent")
}

// HandleForgotConfirm sets a new password using an emailed code.
//
//	@Summary		Confirm password recovery
//	@Description	Consumes a verification code and replaces the password. The account ends verified with the must-change flag cleared.
//	@Tags			Passwords
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.ForgotConfirmRequest	true	"Email, code and new password"
//	@Success		200		{object}	identitysdk.StatusResponse			"Password replaced"
//	@Failure		400		{object}	identitysdk.APIError				"Malformed request, or code invalid or expired"
//	@Failure		404		{object}	identitysdk.APIError				"No account for email"
//	@Router			/api/password/forgot/confirm [post].
func (h *PasswordHandler) HandleForgotConfirm(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.ForgotConfirmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Lifecycle.ResetWithCode(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, "password updated")
}
