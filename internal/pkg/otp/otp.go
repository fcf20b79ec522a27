package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate returns a fixed-width decimal code of the given length, drawn
// uniformly from [0, 10^length) using crypto/rand. Leading zeros are kept.
func Generate(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
