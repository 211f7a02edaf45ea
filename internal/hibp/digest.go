// Package hibp implements the k-anonymity range lookup against the
// Pwned Passwords API. Only the first PrefixLen hex characters of a
// password's SHA-1 digest ever leave the process; suffix matching against
// the returned candidate list happens locally.
package hibp

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is the digest the range API is keyed on, not a security boundary here.
	"encoding/hex"
	"fmt"
	"strings"
)

// Digest and digest part length constants.
const (
	// PrefixLen is the number of leading digest characters disclosed to the API.
	PrefixLen = 5

	// DigestLen is the length of an uppercase hex SHA-1 digest.
	DigestLen = sha1.Size * 2

	// SuffixLen is the length of the digest remainder matched locally.
	SuffixLen = DigestLen - PrefixLen
)

// Digest returns the uppercase hexadecimal SHA-1 digest of password.
func Digest(password string) string {
	sum := sha1.Sum([]byte(password)) //nolint:gosec // See package comment.
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Split divides a full digest into the prefix sent to the API and the
// suffix kept for local matching. The two halves always concatenate back
// to the input.
func Split(digest string) (prefix, suffix string, err error) {
	if len(digest) != DigestLen {
		return "", "", fmt.Errorf("digest length %d, want %d", len(digest), DigestLen)
	}
	for _, r := range digest {
		if !isUpperHex(r) {
			return "", "", fmt.Errorf("digest contains non-hex character %q", r)
		}
	}
	return digest[:PrefixLen], digest[PrefixLen:], nil
}

func isUpperHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
}
