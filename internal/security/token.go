package security

import (
	"crypto/rand"
	"encoding/base64"
)

func NewRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewResetToken mints the raw token delivered to the user out-of-band.
func NewResetToken() (string, error) {
	return NewRandomString(32)
}
