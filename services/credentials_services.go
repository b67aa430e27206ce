package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"riddlehunt/utils/apperror"
)

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitCharacters  = "0123456789"
	punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	credentialAlphabet = lowercaseLetters + uppercaseLetters + digitCharacters + punctuationChars

	DefaultSecretLength = 12
	// One character from each of the four classes
	MinSecretLength = 4
)

// CredentialGenerator produces team secrets containing at least one
// lowercase letter, uppercase letter, digit and punctuation character
type CredentialGenerator struct {
	length int
	random io.Reader
}

func NewCredentialGenerator(length int) (*CredentialGenerator, error) {
	if length < MinSecretLength {
		return nil, apperror.Validation(fmt.Sprintf("secret length must be at least %d", MinSecretLength))
	}
	return &CredentialGenerator{length: length, random: rand.Reader}, nil
}

// Generate draws uniformly from the alphabet and retries until the result
// satisfies the complexity policy
func (g *CredentialGenerator) Generate() (string, error) {
	alphabetSize := big.NewInt(int64(len(credentialAlphabet)))
	buf := make([]byte, g.length)

	for {
		for i := range buf {
			n, err := rand.Int(g.random, alphabetSize)
			if err != nil {
				return "", fmt.Errorf("failed to read random source: %w", err)
			}
			buf[i] = credentialAlphabet[n.Int64()]
		}

		secret := string(buf)
		if MeetsCredentialPolicy(secret) {
			return secret, nil
		}
	}
}

// MeetsCredentialPolicy reports whether s has a character from every class
func MeetsCredentialPolicy(s string) bool {
	return strings.ContainsAny(s, lowercaseLetters) &&
		strings.ContainsAny(s, uppercaseLetters) &&
		strings.ContainsAny(s, digitCharacters) &&
		strings.ContainsAny(s, punctuationChars)
}
