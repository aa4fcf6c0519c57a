// Package totp generates RFC 6238 time-based one-time codes for stored
// authenticator secrets.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultDigits = 6
	DefaultPeriod = 30
)

// decodeSecret parses a base32 shared secret the way authenticator apps
// hand them out: case-insensitive, spaces and dashes ignored, padding
// optional.
func decodeSecret(secret string) ([]byte, error) {
	cleaned := strings.ToUpper(secret)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.TrimRight(cleaned, "=")
	if cleaned == "" {
		return nil, fmt.Errorf("empty secret")
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid base32 secret: %w", err)
	}
	return key, nil
}

// CodeAt computes the code for a secret at the given time
func CodeAt(secret string, digits, period int, t time.Time) (string, error) {
	if digits <= 0 {
		digits = DefaultDigits
	}
	if digits > 10 {
		return "", fmt.Errorf("digits must be at most 10, got %d", digits)
	}
	if period <= 0 {
		period = DefaultPeriod
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := uint64(t.Unix() / int64(period))
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226
	offset := sum[len(sum)-1] & 0x0f
	value := uint64(binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff)

	mod := uint64(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, value%mod), nil
}

// Now computes the current code and how many seconds remain before it
// rolls over.
func Now(secret string, digits, period int) (code string, secondsRemaining int, err error) {
	if period <= 0 {
		period = DefaultPeriod
	}

	now := time.Now()
	code, err = CodeAt(secret, digits, period, now)
	if err != nil {
		return "", 0, err
	}

	secondsRemaining = period - int(now.Unix()%int64(period))
	return code, secondsRemaining, nil
}

// Validate reports whether a secret is usable without generating a code
func Validate(secret string) error {
	_, err := decodeSecret(secret)
	return err
}
