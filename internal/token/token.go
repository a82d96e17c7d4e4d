package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims утверждения токена оператора
type Claims struct {
	jwt.RegisteredClaims
	UserCode string `json:"userCode"`
}

var ErrInvalidToken = errors.New("token is not valid")

// BuildJWTString создаёт подписанный токен для оператора userCode.
// ttl <= 0 выдаёт бессрочный токен.
func BuildJWTString(secret string, userCode string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token secret is empty")
	}
	claims := Claims{UserCode: userCode}
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// GetUserCode проверяет подпись и срок токена и возвращает код оператора
func GetUserCode(secret string, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserCode == "" {
		return "", ErrInvalidToken
	}
	return claims.UserCode, nil
}
