package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	otpPattern   = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidPhone reports whether p is a 10 digit mobile number.
func ValidPhone(p string) bool { return phonePattern.MatchString(p) }

// ValidOTP reports whether c looks like a 6 digit one-time code.
func ValidOTP(c string) bool { return otpPattern.MatchString(c) }

// NewOTP returns a uniformly random 6 digit code, zero padded.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	s := n.String()
	for len(s) < 6 {
		s = "0" + s
	}
	return s, nil
}
