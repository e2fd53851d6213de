// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/tosho/internal/scan"
)

/*
TestExtractIdentifier covers filename → identifier extraction, including the
check-digit rejection cases.
*/
func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"isbn13_plain", "9781789349917.epub", "9781789349917"},
		{"isbn13_with_title", "Learn C Programming - 9781789349917.pdf", "9781789349917"},
		{"isbn10_plain", "0306406152.mobi", "0306406152"},
		{"isbn10_x_check", "043942089X.epub", "043942089X"},
		{"separators", "978-1-78934-991-7.epub", "9781789349917"},
		{"invalid_check_digit", "9781789349918.epub", ""},
		{"invalid_isbn10_check", "0306406153.pdf", ""},
		{"too_short", "12345.pdf", ""},
		{"no_digits", "war-and-peace.epub", ""},
		{"year_like_digits", "report-2024.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scan.ExtractIdentifier(tt.filename))
		})
	}
}

/*
TestExtractIdentifiers covers multi-candidate extraction with dedup from
fuzzy text.
*/
func TestExtractIdentifiers(t *testing.T) {
	text := "primary 9781789349917, alt 0306406152, again 9781789349917, junk 1234567890"

	found := scan.ExtractIdentifiers(text)

	assert.Equal(t, []string{"9781789349917", "0306406152"}, found)
}

/*
TestValidISBN pins the check-digit arithmetic for both forms.
*/
func TestValidISBN(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		valid     bool
	}{
		{"valid_isbn13", "9781789349917", true},
		{"valid_isbn13_alt", "9780306406157", true},
		{"invalid_isbn13", "9780306406158", false},
		{"valid_isbn10", "0306406152", true},
		{"valid_isbn10_x", "043942089X", true},
		{"lowercase_x_check", "043942089x", true},
		{"invalid_isbn10", "0306406151", false},
		{"wrong_length", "123456789", false},
		{"x_not_last", "04394X2089", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, scan.ValidISBN(tt.candidate))
		})
	}
}

/*
TestExtractIdentifier_RoundTrip checks the idempotence property: a filename
built from a valid identifier always yields that identifier back.
*/
func TestExtractIdentifier_RoundTrip(t *testing.T) {
	for _, isbn := range []string{"9781789349917", "0306406152", "043942089X"} {
		assert.Equal(t, isbn, scan.ExtractIdentifier(isbn+".epub"))
	}
}
