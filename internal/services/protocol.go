package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
)

const (
	protocolLength   = 13
	protocolAlphabet = "0123456789ABCDEF"
)

var protocolPattern = regexp.MustCompile(`^[0-9A-F]{13}$`)

// NewProtocolCode draws 13 uppercase hex characters. Each byte maps to one
// character through its low nibble, so every character is uniform.
func NewProtocolCode(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	var buf [protocolLength]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	out := make([]byte, protocolLength)
	for i, b := range buf {
		out[i] = protocolAlphabet[b&0x0F]
	}
	return string(out), nil
}

func ValidProtocolCode(code string) bool { return protocolPattern.MatchString(code) }
