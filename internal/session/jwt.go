package session

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// Claims decodes a JWT payload without verifying its signature. ok is false
// for opaque tokens.
func Claims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// TokenExpiry returns the exp claim of a JWT.
func TokenExpiry(token string) (time.Time, bool) {
	c, ok := Claims(token)
	if !ok {
		return time.Time{}, false
	}
	exp, ok := c["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
