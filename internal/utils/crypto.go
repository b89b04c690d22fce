// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateCartToken returns the opaque identifier handed to storefront clients.
func GenerateCartToken() (string, error) {
	return GenerateRandomString(48)
}

// GenerateOrderNumber builds a human-readable order number like
// LM-20260825-4F7KQ2. The random tail uses uppercase characters only so the
// number survives being read over the phone.
func GenerateOrderNumber(now time.Time) (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tail := make([]byte, 6)

	for i := range tail {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		tail[i] = charset[n.Int64()]
	}

	return fmt.Sprintf("LM-%s-%s", now.Format("20060102"), tail), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
