package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrMismatch = errors.New("code does not match")

// CodeLength is the number of digits in a generated code.
const CodeLength = 6

// Generate creates a cryptographically secure numeric code, zero-padded to
// CodeLength digits.
func Generate() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(CodeLength), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate random number: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}

// Hash returns the hex-encoded SHA-256 hash of the code. Only this value is
// ever stored.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

// Verify compares a plaintext code against a stored hash in constant time.
func Verify(hash, code string) error {
	computed := Hash(code)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) != 1 {
		return ErrMismatch
	}
	return nil
}
