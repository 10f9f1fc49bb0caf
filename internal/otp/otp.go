// Package otp generates the numeric one-time passwords that are emailed to
// users and normalises the values posted by the six-box OTP input.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Length is the number of digits in a code and the number of input boxes.
const Length = 6

const (
	VerifyLifetime = 24 * time.Hour
	ResetLifetime  = 5 * time.Minute
)

var (
	lowest    = big.NewInt(100000)
	codeRange = big.NewInt(900000)
)

// Generate returns a random code in the range 100000-999999.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", fmt.Errorf("otp generation: %w", err)
	}

	return n.Add(n, lowest).String(), nil
}

// Digits strips everything but ASCII digits from s.
func Digits(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Join concatenates the digits of each box value, in order, and truncates the result to Length.
func Join(boxes []string) string {
	code := Digits(strings.Join(boxes, ""))
	if len(code) > Length {
		code = code[:Length]
	}

	return code
}

// Distribute spreads the first Length digits of a pasted value across the boxes.
// focus is the index of the first empty box, or the last box when every box is filled.
func Distribute(s string) (boxes [Length]string, focus int) {
	digits := Digits(s)
	if len(digits) > Length {
		digits = digits[:Length]
	}

	for i, d := range digits {
		boxes[i] = string(d)
	}

	focus = len(digits)
	if focus >= Length {
		focus = Length - 1
	}

	return boxes, focus
}

// Valid reports whether code is exactly Length digits.
func Valid(code string) bool {
	return len(code) == Length && Digits(code) == code
}
