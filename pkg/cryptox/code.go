package cryptox

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/pquerna/otp"
)

// GenerateNumericCode returns a uniformly random zero-padded numeric code
// with the given number of digits, e.g. "007123" for otp.DigitsSix.
func GenerateNumericCode(digits otp.Digits) (string, error) {
	n := digits.Length()
	if n <= 0 || n > 9 {
		return "", fmt.Errorf("cryptox: unsupported code length %d", n)
	}

	mod := uint32(1)
	for range n {
		mod *= 10
	}
	// Reject values from the partial top bucket so every code is equally likely.
	limit := (1<<32 - 1) - (1<<32-1)%mod

	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("cryptox: generate code: %w", err)
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v < limit {
			return digits.Format(int32(v % mod)), nil // #nosec G115 - mod <= 1e9
		}
	}
}
