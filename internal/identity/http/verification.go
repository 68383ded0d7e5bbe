package http

import (
	"net/http"

	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/pkg/httpx"
	"github.com/yli59577/puyuann/pkg/identitysdk"
)

type VerificationHandler struct {
	Lifecycle *service.IdentityLifecycle

	// EchoCode returns the issued code in the response body. Dev only.
	EchoCode bool
}

// HandleSend issues a fresh verification code.
//
//	@Summary		Send verification code
//	@Description	Issues a 6-digit code for the email and mails it. The code is echoed in the response only when the service runs with ENV=dev.
//	@Tags			Verification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.EmailRequest		true	"Email address"
//	@Success		200		{object}	identitysdk.SendCodeResponse	"Code issued"
//	@Failure		400		{object}	identitysdk.APIError			"Malformed request"
//	@Failure		503		{object}	identitysdk.APIError			"Temporarily unavailable"
//	@Router			/api/verification/send [post].
func (h *VerificationHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	code, err := h.Lifecycle.SendCode(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := identitysdk.SendCodeResponse{Status: identitysdk.StatusOK}
	if h.EchoCode {
		resp.Code = code
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCheck consumes a code and verifies the matching account.
//
//	@Summary		Check verification code
//	@Description	Consumes a live code for the email. A pending account for the email becomes verified.
//	@Tags			Verification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.CheckCodeRequest	true	"Email and code"
//	@Success		200		{object}	identitysdk.StatusResponse		"Code accepted"
//	@Failure		400		{object}	identitysdk.APIError			"Malformed request, or code invalid or expired"
//	@Failure		503		{object}	identitysdk.APIError			"Temporarily unavailable"
//	@Router			/api/verification/check [post].
func (h *VerificationHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.CheckCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Lifecycle.CheckCode(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeOK(w, "verified")
}

func writeOK(w http.ResponseWriter, message string) {
	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{
		Status:  identitysdk.StatusOK,
		Message: message,
	})
}
