package access

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	InviteTokenPrefix = "fki_"
	InviteTokenBytes  = 32
)

// GenerateInviteToken returns a fresh token and the hash to persist.
func GenerateInviteToken() (token string, hash []byte, err error) {
	randomBytes := make([]byte, InviteTokenBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = InviteTokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	return token, HashInviteToken(token), nil
}

func HashInviteToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

// ValidInviteTokenFormat reports whether token could have been issued by
// GenerateInviteToken.
func ValidInviteTokenFormat(token string) bool {
	encoded, ok := strings.CutPrefix(token, InviteTokenPrefix)
	if !ok {
		return false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	return len(decoded) == InviteTokenBytes
}
