package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Acme Casino", "acme-casino"},
		{"already_slug", "acme-casino", "acme-casino"},
		{"punctuation_runs", "  Lucky!!  Star -- 777 ", "lucky-star-777"},
		{"leading_trailing", "--Beta--", "beta"},
		{"empty", "", ""},
		{"only_symbols", "!@#$ %^&*", ""},
		{"non_ascii", "Café Royale", "caf-royale"},
		{"digits", "21 Casino", "21-casino"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveSlug(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, DeriveSlug(got), "must be idempotent")
		})
	}
}
