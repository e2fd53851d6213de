// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scan

import (
	"path/filepath"
	"strings"
)

// UnknownAuthor is the author of record when the path reveals nothing.
const UnknownAuthor = "Unknown"

// # Format Detection

// SupportedFormats is the extension set the scanner indexes. Anything else
// is skipped before extraction.
var SupportedFormats = map[string]bool{
	"pdf":  true,
	"epub": true,
	"mobi": true,
	"azw3": true,
	"cbr":  true,
	"cbz":  true,
}

// DetectFormat returns the lowercase format of a path, or "" when the
// extension is unsupported.
func DetectFormat(path string) string {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !SupportedFormats[extension] {
		return ""
	}
	return extension
}

// # Path-Derived Attributes

// PathAttributes carries what the directory layout reveals about a file.
type PathAttributes struct {
	Author string
	Title  string
}

/*
AttributesFromPath derives author and title from the conventional layout

	<root>/<Author>/<Title>/<file>

relative to a library root. Shallower or flatter layouts fall back to
author "Unknown" and the base filename (without extension) as the title.
*/
func AttributesFromPath(root, path string) PathAttributes {
	fallback := PathAttributes{
		Author: UnknownAuthor,
		Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	relative, err := filepath.Rel(root, path)
	if err != nil {
		return fallback
	}

	segments := strings.Split(filepath.ToSlash(relative), "/")

	// Need at least Author/Title/file below the root.
	if len(segments) < 3 {
		return fallback
	}

	author := strings.TrimSpace(segments[len(segments)-3])
	title := strings.TrimSpace(segments[len(segments)-2])
	if author == "" || title == "" {
		return fallback
	}

	return PathAttributes{Author: author, Title: title}
}
