package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iurnickita/bizledger/internal/token"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.Header.Get(HeaderUserCodeKey)))
}

func TestMiddleware(t *testing.T) {
	h := NewAuth("secret").Middleware(echoUser)
	tokenString, err := token.BuildJWTString("secret", "clerk-7", time.Hour)
	require.NoError(t, err)

	t.Run("bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		h(w, r)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "clerk-7", w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: cookieUserToken, Value: tokenString})
		w := httptest.NewRecorder()
		h(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("forged header is overwritten", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+tokenString)
		r.Header.Set(HeaderUserCodeKey, "admin")
		w := httptest.NewRecorder()
		h(w, r)
		require.Equal(t, "clerk-7", w.Body.String())
	})
}

func TestMiddlewareDisabled(t *testing.T) {
	h := NewAuth("").Middleware(echoUser)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
