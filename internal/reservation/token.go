package reservation

import (
	"crypto/rand"
	"math/big"
)

// TokenLength is the length of a reservation token.
const TokenLength = 9

// tokenAlphabet is the base-36 alphabet tokens are drawn from.
const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewToken creates a random reservation token. The token is the only
// credential needed to cancel a reservation, so it is never derived from the
// sequential record ID.
func NewToken() (string, error) {
	result := make([]byte, TokenLength)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			return "", err
		}
		result[i] = tokenAlphabet[n.Int64()]
	}
	return string(result), nil
}

// ValidToken reports whether s has the shape of a reservation token.
func ValidToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z') {
			return false
		}
	}
	return true
}
