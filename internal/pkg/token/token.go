// Package token generates the opaque bearer keys stored in auth_tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
)

const keyBytes = 20

// NewKey returns a 40-character hex key from a CSPRNG. The key carries no
// structure; identity comes from the database row it maps to.
func NewKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
