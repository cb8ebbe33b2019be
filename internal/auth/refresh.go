package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewOpaqueToken returns 32 bytes of hex-encoded randomness, used for
// refresh tokens and invitation tokens.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewRefreshToken returns an opaque refresh token and the SHA-256 hash
// that gets persisted. Only the hash ever touches the database.
func NewRefreshToken() (token string, hash string, err error) {
	token, err = NewOpaqueToken()
	if err != nil {
		return "", "", err
	}
	return token, HashRefreshToken(token), nil
}

func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
