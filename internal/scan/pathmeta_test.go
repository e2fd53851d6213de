// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/tosho/internal/scan"
)

/*
TestDetectFormat covers the supported-extension set and the skip behavior
for everything else.
*/
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"epub", "/lib/books/a/b/file.epub", "epub"},
		{"pdf_uppercase", "/lib/books/a/b/FILE.PDF", "pdf"},
		{"mobi", "/lib/x.mobi", "mobi"},
		{"azw3", "/lib/x.azw3", "azw3"},
		{"cbr", "/lib/x.cbr", "cbr"},
		{"cbz", "/lib/x.CbZ", "cbz"},
		{"txt_unsupported", "/lib/x.txt", ""},
		{"no_extension", "/lib/x", ""},
		{"azw_not_azw3", "/lib/x.azw", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scan.DetectFormat(tt.path))
		})
	}
}

/*
TestAttributesFromPath covers the conventional <root>/<Author>/<Title>/<file>
layout and the Unknown fallback for flatter trees.
*/
func TestAttributesFromPath(t *testing.T) {
	tests := []struct {
		name       string
		root       string
		path       string
		wantAuthor string
		wantTitle  string
	}{
		{
			"conventional_layout",
			"/lib/books",
			"/lib/books/Jeff Szuhay/Learn C Programming/9781789349917.epub",
			"Jeff Szuhay",
			"Learn C Programming",
		},
		{
			"deeper_nesting_uses_last_three",
			"/lib",
			"/lib/fiction/Ursula K. Le Guin/The Dispossessed/book.epub",
			"Ursula K. Le Guin",
			"The Dispossessed",
		},
		{
			"flat_file_falls_back",
			"/lib/books",
			"/lib/books/strange-novel.epub",
			"Unknown",
			"strange-novel",
		},
		{
			"one_level_falls_back",
			"/lib/books",
			"/lib/books/misc/strange-novel.epub",
			"Unknown",
			"strange-novel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attributes := scan.AttributesFromPath(tt.root, tt.path)
			assert.Equal(t, tt.wantAuthor, attributes.Author)
			assert.Equal(t, tt.wantTitle, attributes.Title)
		})
	}
}
