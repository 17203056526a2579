package tools

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
)

// HashSHA512 returns the hex-encoded SHA-512 digest of text. Used for
// password storage (double-hashed with the email as salt) and for keeping
// refresh tokens hashed at rest.
func HashSHA512(text string) string {
	sum := sha512.Sum512([]byte(text))
	return hex.EncodeToString(sum[:])
}

// RandomToken returns a hex string of the given length from a
// cryptographic source. Refresh tokens are bearer credentials, so a
// predictable generator is not an option here.
func RandomToken(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)[:length]
}
