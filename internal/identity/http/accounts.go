package http

import (
	"net/http"

	"github.com/yli59577/puyuann/internal/identity/domain"
	"github.com/yli59577/puyuann/internal/identity/service"
	"github.com/yli59577/puyuann/pkg/httpx"
	"github.com/yli59577/puyuann/pkg/identitysdk"
)

// AccountHandler serves registration, login and the account summary.
type AccountHandler struct {
	Lifecycle *service.IdentityLifecycle
}

// HandleRegister creates a pending account. Codes come from /api/verification/send.
//
//	@Summary		Register an account
//	@Description	Creates an unverified account. Request a code with /api/verification/send. An expired, unverified signup for the same email is reopened.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.RegisterRequest		true	"Email and password"
//	@Success		201		{object}	identitysdk.RegisterResponse	"Pending account created"
//	@Failure		400		{object}	identitysdk.APIError			"Malformed request"
//	@Failure		409		{object}	identitysdk.APIError			"Email already registered"
//	@Failure		503		{object}	identitysdk.APIError			"Temporarily unavailable"
//	@Router			/api/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	acc, err := h.Lifecycle.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identitysdk.RegisterResponse{
		Status:    identitysdk.StatusOK,
		AccountID: acc.ID,
	})
}

// HandleStatus reports whether an email is taken.
//
//	@Summary		Check registration status
//	@Description	Reports whether an email belongs to a live account. Expired unverified signups report exists=false.
//	@Tags			Accounts
//	@Produce		json
//	@Param			email	query		string										true	"Email address"
//	@Success		200		{object}	identitysdk.RegistrationStatusResponse	"Registration status"
//	@Failure		400		{object}	identitysdk.APIError						"Malformed request"
//	@Failure		503		{object}	identitysdk.APIError						"Temporarily unavailable"
//	@Router			/api/register/check [get].
func (h *AccountHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	req := identitysdk.EmailRequest{Email: r.URL.Query().Get("email")}
	if !validate(w, req) {
		return
	}

	state, err := h.Lifecycle.RegistrationStatus(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.RegistrationStatusResponse{
		Status:   identitysdk.StatusOK,
		Exists:   state.Exists(),
		Verified: state == domain.StateVerified,
	})
}

// HandleLogin exchanges credentials for a session token.
//
//	@Summary		Log in
//	@Description	Verifies the password of a verified account and issues a session token.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		identitysdk.LoginRequest	true	"Email and password"
//	@Success		200		{object}	identitysdk.LoginResponse	"Session issued"
//	@Failure		400		{object}	identitysdk.APIError		"Malformed request"
//	@Failure		401		{object}	identitysdk.APIError		"Wrong email or password"
//	@Failure		403		{object}	identitysdk.APIError		"Account not verified"
//	@Failure		503		{object}	identitysdk.APIError		"Temporarily unavailable"
//	@Router			/api/auth [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req identitysdk.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.Lifecycle.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.LoginResponse{
		Status:             identitysdk.StatusOK,
		Token:              sess.Token,
		TokenType:          "Bearer",
		ExpiresIn:          int(sess.TTL.Seconds()),
		MustChangePassword: sess.MustChangeCredential,
	})
}

// HandleMe returns the account behind the bearer token.
//
//	@Summary		Current account
//	@Description	Returns the account identified by the session token.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	identitysdk.AccountResponse	"Account summary"
//	@Failure		401	{object}	identitysdk.APIError		"Invalid or missing token"
//	@Failure		404	{object}	identitysdk.APIError		"Account no longer exists"
//	@Router			/api/me [get].
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	accountID, ok := httpx.AccountIDFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrTokenInvalid)
		return
	}

	acc, err := h.Lifecycle.AccountSummary(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.AccountResponse{
		Status:             identitysdk.StatusOK,
		AccountID:          acc.ID,
		Email:              acc.Email,
		Alias:              acc.Alias,
		Verified:           acc.Verified,
		MustChangePassword: acc.MustChangeCredential,
	})
}
