package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iurnickita/bizledger/internal/token"
)

type Auth interface {
	Middleware(h http.HandlerFunc) http.HandlerFunc
}

const (
	HeaderUserCodeKey = "X-Ledger-User"
	cookieUserToken   = "ledgerUserToken"
)

var ErrNoToken = errors.New("no user token")

type auth struct {
	secret string
}

// NewAuth builds the token check. An empty secret turns it off.
func NewAuth(secret string) Auth {
	return &auth{secret: secret}
}

func (a *auth) Middleware(h http.HandlerFunc) http.HandlerFunc {
	if a.secret == "" {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		// получение id пользователя
		userCode, err := a.getUserCode(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		// записываем
		r.Header.Set(HeaderUserCodeKey, userCode)

		// передаём управление хендлеру
		h.ServeHTTP(w, r)
	}
}

func (a *auth) getUserCode(r *http.Request) (string, error) {
	var tokenString string
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		tokenString = bearer
	} else if tokenCookie, err := r.Cookie(cookieUserToken); err == nil {
		// куки пользователя
		tokenString = tokenCookie.Value
	}
	if tokenString == "" {
		return "", ErrNoToken
	}
	return token.GetUserCode(a.secret, tokenString)
}
