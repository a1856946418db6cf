// Package ident generates the short public identifiers handed out for pastes.
//
// Identifiers are drawn from a space of 2^24 values. Nothing here checks them
// against storage; uniqueness is probabilistic, and a collision only surfaces
// when the storage layer rejects a duplicate.
package ident

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
)

// ByteLen is the number of random bytes behind each identifier.
const ByteLen = 3

// Space is the number of distinct identifiers New can produce.
const Space = 1 << (8 * ByteLen)

// Pattern matches every identifier New can produce.
var Pattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,4}$`)

var randReader io.Reader = rand.Reader

// New draws ByteLen bytes from crypto/rand and encodes them with the URL-safe
// base64 alphabet, with any '=' padding removed.
func New() (string, error) {
	buf := make([]byte, ByteLen)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return Encode(buf), nil
}

// Encode renders b the way New renders its random draw.
func Encode(b []byte) string {
	return strings.ReplaceAll(base64.URLEncoding.EncodeToString(b), "=", "")
}

// Valid reports whether s has the shape of a generated identifier.
func Valid(s string) bool {
	return Pattern.MatchString(s)
}

// CollisionProbability is the birthday bound for n identifiers drawn
// independently from Space: 1 - exp(-n(n-1) / 2·Space).
func CollisionProbability(n int) float64 {
	if n < 2 {
		return 0
	}
	k := float64(n)
	return -math.Expm1(-k * (k - 1) / (2 * float64(Space)))
}
