package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// RandomString returns n random bytes in unpadded url-safe base64, so the
// result can travel inside a token or a query string.
func RandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256 is the digest stored in place of a secret.
func SHA256(b []byte) string {
	hashed := sha256.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(hashed[:])
}
