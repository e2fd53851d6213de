// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan

import (
	"path/filepath"
	"strings"
)

// # Identifier Extraction

/*
ExtractIdentifier pulls a validated ISBN out of a filename.

The extension and separators are stripped, then every 10- or 13-character
digit run is checked (X allowed as the last character of an ISBN-10). The
first run with a valid check digit wins; a filename with no valid
identifier yields "".
*/
func ExtractIdentifier(filename string) string {
	candidates := ExtractIdentifiers(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

/*
ExtractIdentifiers pulls every validated identifier out of arbitrary text,
deduplicated in order of appearance. Used for fuzzy inputs (search boxes,
sidecar notes) as well as filenames.
*/
func ExtractIdentifiers(text string) []string {
	seen := make(map[string]struct{})
	var found []string

	for _, run := range digitRuns(text) {
		if !ValidISBN(run) {
			continue
		}
		if _, dup := seen[run]; dup {
			continue
		}
		seen[run] = struct{}{}
		found = append(found, run)
	}

	return found
}

// digitRuns splits text into maximal digit runs, allowing a trailing X
// (ISBN-10 check character). Hyphens, underscores, and dots are the
// separators printed inside ISBNs; they are stripped within a run. Anything
// else breaks the run.
func digitRuns(text string) []string {
	var runs []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			current.WriteRune(r)
		case (r == 'X' || r == 'x') && current.Len() > 0:
			// X is only meaningful as a check character; close the run on it.
			current.WriteRune('X')
			flush()
		case r == '-' || r == '_' || r == '.':
			// Intra-identifier separator; the run continues across it.
		default:
			flush()
		}
	}
	flush()

	return runs
}

// # Check-Digit Validation

// ValidISBN reports whether the string is a valid ISBN-10 or ISBN-13.
func ValidISBN(candidate string) bool {
	switch len(candidate) {
	case 10:
		return validISBN10(candidate)
	case 13:
		return validISBN13(candidate)
	default:
		return false
	}
}

// validISBN10 checks the weighted mod-11 sum. The last position may be 'X'
// standing for ten.
func validISBN10(candidate string) bool {
	upper := strings.ToUpper(candidate)
	sum := 0

	for i, r := range upper {
		var value int
		switch {
		case r >= '0' && r <= '9':
			value = int(r - '0')
		case r == 'X' && i == 9:
			value = 10
		default:
			return false
		}
		sum += value * (10 - i)
	}

	return sum%11 == 0
}

// validISBN13 checks the alternating 1/3-weighted mod-10 sum.
func validISBN13(candidate string) bool {
	sum := 0

	for i, r := range candidate {
		if r < '0' || r > '9' {
			return false
		}
		value := int(r - '0')
		if i%2 == 1 {
			value *= 3
		}
		sum += value
	}

	return sum%10 == 0
}
