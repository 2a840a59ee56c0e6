package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateActivationCode returns a 6 digit numeric code.
func GenerateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
