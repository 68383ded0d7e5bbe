package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yli59577/puyuann/pkg/httpx"
)

type staticResolver map[string]string

func (s staticResolver) Resolve(h string) (string, bool) {
	id, ok := s[h]
	return id, ok
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	res := staticResolver{"Bearer good": "acct-1"}
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.AccountIDFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(id))
	}), httpx.AuthnMiddleware(res))

	t.Run("accepts resolvable header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "acct-1", rec.Body.String())
	})

	t.Run("rejects everything else", func(t *testing.T) {
		for _, hdr := range []string{"", "Bearer bad", "bearer good"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", hdr)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code, hdr)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
			require.Contains(t, rec.Body.String(), `"token_invalid"`)
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	cases := map[string]bool{
		`{"email":"a@x.com"}`:            true,
		``:                               false,
		`{"email":"a@x.com","extra":1}`:  false,
		`{"email":"a@x.com"}{"email":1}`: false,
		`not json`:                       false,
	}
	for body, ok := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &dst)
		if ok {
			require.NoError(t, err, body)
		} else {
			require.Error(t, err, body)
		}
	}
	require.Equal(t, "a@x.com", dst.Email)
}

func TestWriteJSONSetsNoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"status": "0"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"0"}`, rec.Body.String())
}
