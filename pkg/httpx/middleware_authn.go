package httpx

import (
	"net/http"

	"github.com/yli59577/puyuann/pkg/slogx"
)

// Resolver turns a raw Authorization header into an account id.
type Resolver interface {
	Resolve(authorization string) (string, bool)
}

// AuthnMiddleware rejects requests whose Authorization header does not
// resolve to an account, and injects the account id otherwise.
func AuthnMiddleware(res Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			accountID, ok := res.Resolve(r.Header.Get("Authorization"))
			if !ok {
				slogx.FromContext(ctx).Debug("bearer token rejected")
				writeBearerError(w, "the access token is missing, invalid or expired")
				return
			}

			ctx = slogx.WithAccount(WithAccountID(ctx, accountID), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 challenge plus a JSON body in the same shape as other errors.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"status":  "1",
		"code":    "token_invalid",
		"message": desc,
	})
}
