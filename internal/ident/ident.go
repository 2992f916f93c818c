// Package ident generates the time-ordered identifiers used in part records.
package ident

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Prefixes for the identifier kinds that appear in part records.
const (
	PrefixPart    = "prt"
	PrefixSession = "ses"
	PrefixMessage = "msg"
	PrefixCall    = "call"
)

// randomLen is the number of random suffix characters. 14 characters over a
// 62-symbol alphabet is ~83 bits of entropy.
const randomLen = 14

// alphabet holds the characters used for the random suffix.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// New returns an identifier of the form {prefix}_{timeHex}{random}, where
// timeHex is the current Unix time in milliseconds as a fixed-width 12-digit
// hex value. Identifiers generated later sort lexicographically after earlier
// ones at millisecond granularity.
func New(prefix string) string {
	return newAt(prefix, time.Now())
}

// newAt is New with an explicit timestamp, for tests.
func newAt(prefix string, t time.Time) string {
	buf := make([]byte, randomLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS RNG is broken.
		panic(fmt.Sprintf("ident: rand.Read: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("%s_%012x%s", prefix, t.UnixMilli(), buf)
}
