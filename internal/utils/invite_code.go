package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateInviteCode generates a random alphanumeric invite code of the given length
func GenerateInviteCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid invite code length %d", length)
	}

	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
