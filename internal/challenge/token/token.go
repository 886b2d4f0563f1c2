// Package token serializes challenges into signed bearer strings. Each token
// is signed with a throwaway ed25519 key generated for that one token and
// discarded immediately; the signature makes the string opaque and
// tamper-evident but is never re-verified, so no signing key is retained.
package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the challenge payload: the nonce the client must prove possession
// of, and the absolute expiry in epoch milliseconds.
type Claims struct {
	Nonce   string `json:"nonce"`
	Expires int64  `json:"expires"`
	jwt.RegisteredClaims
}

// Sign encodes {nonce, expires} into a JWT signed with a single-use random
// key. The private key goes out of scope when this function returns.
func Sign(nonce string, expires time.Time) (string, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate throwaway signing key: %w", err)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		Nonce:   nonce,
		Expires: expires.UnixMilli(),
	})
	signed, err := t.SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("sign challenge token: %w", err)
	}
	return signed, nil
}

// Decode extracts the claims without verifying the signature. The issuer key
// was discarded at signing time; the token is trusted by membership in the
// challenge store, not by its signature.
func Decode(tokenString string) (*Claims, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims)
	if err != nil {
		return nil, fmt.Errorf("decode challenge token: %w", err)
	}
	return &claims, nil
}
