package mwdump

import (
	"crypto/sha1"
	"fmt"
	"math/big"
	"regexp"
)

const sha1Base36Width = 31

var validSHA1Base36 = regexp.MustCompile(`^[0-9a-z]{31}$`)

// DeriveSHA1Base36 computes the revision digest MediaWiki stores in
// rev_sha1: SHA-1 over the revision text, reinterpreted as a big-endian
// unsigned integer, base-36 encoded and zero-padded to 31 characters
// (spec §4.7, C7).
func DeriveSHA1Base36(text []byte) string {
	sum := sha1.Sum(text)
	n := new(big.Int).SetBytes(sum[:])
	s := n.Text(36)
	if len(s) < sha1Base36Width {
		s = fmt.Sprintf("%0*s", sha1Base36Width, s)
	}
	return s
}

// ValidateSHA1Base36 checks a source-provided <sha1> value against the
// shape MediaWiki produces: 31 lowercase base-36 characters. Per spec
// §4.7, a value that validates is trusted verbatim.
func ValidateSHA1Base36(s string) bool {
	return validSHA1Base36.MatchString(s)
}
