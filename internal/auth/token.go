package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AdminTokenPrefix = "adm_"
	AgentTokenPrefix = "agt_"

	tokenLength = 32 // 32 bytes = 256 bits
)

// DefaultCost is the bcrypt cost factor used for token hashing
const DefaultCost = bcrypt.DefaultCost

// GenerateToken returns a new opaque bearer token with the given prefix.
func GenerateToken(prefix string) (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// LookupKey is the indexed sha256 of a token, used to find its row before the
// bcrypt comparison.
func LookupKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashToken generates a bcrypt hash from a plaintext token
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// CheckToken compares a plaintext token with a bcrypt hash
func CheckToken(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

func hasPrefix(token, prefix string) bool {
	return strings.HasPrefix(token, prefix) && len(token) > len(prefix)
}
