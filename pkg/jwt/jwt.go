package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	AccessTokenExpire  = 2 * time.Hour
	RefreshTokenExpire = 30 * 24 * time.Hour
)

var secret = []byte("cudliy-dev-secret")

var ErrInvalidToken = errors.New("invalid token")

// SetSecret replaces the signing secret; call once at startup from config.
func SetSecret(s string) {
	if s != "" {
		secret = []byte(s)
	}
}

// MyClaims carries the user identity inside the access token.
type MyClaims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenToken issues an access/refresh token pair. The refresh token carries no
// claims beyond expiry; identity is re-read from the old access token.
func GenToken(userID uint64, username string) (aToken, rToken string, err error) {
	c := MyClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenExpire)),
			Issuer:    "cudliy",
		},
	}
	aToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return
	}
	rToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenExpire)),
		Issuer:    "cudliy",
	}).SignedString(secret)
	return
}

func keyFunc(_ *jwt.Token) (interface{}, error) { return secret, nil }

// ParseToken validates an access token and returns its claims.
func ParseToken(tokenString string) (*MyClaims, error) {
	claims := new(MyClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken exchanges an expired access token plus a valid refresh token
// for a fresh pair. Any other access-token error is rejected.
func RefreshToken(aToken, rToken string) (newAToken, newRToken string, err error) {
	if _, err = jwt.Parse(rToken, keyFunc); err != nil {
		return
	}

	claims := new(MyClaims)
	_, err = jwt.ParseWithClaims(aToken, claims, keyFunc)
	if err == nil {
		// access token still valid, reuse identity and rotate anyway
		return GenToken(claims.UserID, claims.Username)
	}
	var vErr *jwt.ValidationError
	if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
		return GenToken(claims.UserID, claims.Username)
	}
	return
}
