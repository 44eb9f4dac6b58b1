package test

import (
	"math/rand/v2"
	"strings"
)

const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// RandomASCIIString returns an alphanumeric string of length between minLen
// and maxLen inclusive.
func RandomASCIIString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	return randomFrom(asciiLetters, minLen+rand.IntN(maxLen-minLen+1))
}

// RandomLicenseKeys returns n distinct keys shaped like XXXXX-XXXXX-XXXXX.
func RandomLicenseKeys(n int) []string {
	seen := make(map[string]struct{}, n)
	keys := make([]string, 0, n)
	for len(keys) < n {
		groups := make([]string, 3)
		for i := range groups {
			groups[i] = randomFrom(keyAlphabet, 5)
		}
		key := strings.Join(groups, "-")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func randomFrom(alphabet string, length int) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
