package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claim struct {
	Metadata Metadata `json:"metadata"`
	jwt.RegisteredClaims
}

type Metadata struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

// Generate signs an HS256 token carrying metadata, valid for ttl.
func Generate(secret, issuer string, metadata Metadata, ttl time.Duration) (string, error) {
	now := time.Now()
	claim := Claim{
		Metadata: metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   metadata.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(secret))
}

func Parse(secret, issuer, tokenString string) (*Claim, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claim{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claim, ok := parsed.Claims.(*Claim)
	if !ok || !parsed.Valid || claim.Metadata.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claim, nil
}
