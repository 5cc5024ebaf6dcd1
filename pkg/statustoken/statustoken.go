// Package statustoken issues compact EdDSA JWTs announcing an issuer's
// latest batch number. It is a convenience polling channel, not a trust
// root: a relying party MUST still verify certificates against a fetched
// SignedValidityWindow, never against a status token alone.
package statustoken

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the status token's payload: which issuer, which batch, and when
// it was signed.
type Claims struct {
	IssuerID    string `json:"iss"`
	BatchNumber uint32 `json:"batch"`
	jwt.RegisteredClaims
}

// Issue signs a status token for batchNumber under priv, the same Ed25519
// key used to sign the issuer's validity window.
func Issue(issuerID []byte, batchNumber uint32, priv ed25519.PrivateKey) (string, error) {
	claims := Claims{
		IssuerID:    fmt.Sprintf("%x", issuerID),
		BatchNumber: batchNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(priv)
}

// Parse validates and decodes a status token signed with the key
// corresponding to pub, returning the claims it carries.
func Parse(tokenString string, pub ed25519.PublicKey) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("statustoken: unexpected signing method %v", t.Header["alg"])
		}
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("statustoken: %w", err)
	}
	return claims, nil
}
