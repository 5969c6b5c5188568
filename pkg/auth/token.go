package auth

import (
	"strconv"
	"time"

	"resellops/pkg/rbac"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload carried by bearer tokens. Token issuance lives
// outside this backend; only verification happens here.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// ParseToken verifies an HS256 bearer token and returns the principal it
// encodes.
func ParseToken(tokenStr, secret string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrTokenUnverifiable
	}

	id, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return Principal{}, err
	}

	role := rbac.Role(claims.Role)
	if !role.Valid() {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	return Principal{ID: id, Role: role}, nil
}

// SignToken mints a token for p. Used by the seed utility and tests only.
func SignToken(p Principal, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(int64(p.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: p.Role.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
