// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// Deref returns the value behind a pointer or the zero value for nil
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// ParseUUID parses a UUID string and returns an error for malformed input
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID %q: %w", s, err)
	}
	return id, nil
}

var tenDigitPhone = regexp.MustCompile(`^\d{10}$`)

// NormalizePhone converts a raw Indian phone number to its canonical
// +91XXXXXXXXXX form. Already-normalized numbers pass through unchanged.
func NormalizePhone(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, CountryCodePrefix)
	if !tenDigitPhone.MatchString(p) {
		return "", fmt.Errorf("invalid phone number %q: expected 10 digits", phone)
	}
	return CountryCodePrefix + p, nil
}

// MaskPhone hides the middle digits of a normalized phone number for display.
// Shows +91XX****XXXX format.
func MaskPhone(phone string) string {
	if len(phone) < 9 {
		return phone
	}
	return phone[:5] + "****" + phone[len(phone)-4:]
}

// RoundMoney rounds a monetary amount to two decimal places using
// round-half-up semantics.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
