package relay

import (
	"crypto/rand"
	"fmt"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateTransferCode produces a 6-character uppercase alphanumeric
// code. It is a human confirmation token, not a security boundary; the
// only validation needed is collision rejection within one parcel's
// checkpoint history, which the caller performs.
func GenerateTransferCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return string(code), nil
}
