package application

import (
	"crypto/rand"
	"math/big"
)

const (
	slugLength  = 9
	tokenLength = 22
	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// randomSlug mints a short public identifier for an auction.
func randomSlug() string { return randomString(slugLength) }

// randomToken mints an invite token for a participant.
func randomToken() string { return randomString(tokenLength) }

func randomString(n int) string {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform entropy source is
			// broken; nothing sensible to continue with.
			panic("token generation: " + err.Error())
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
