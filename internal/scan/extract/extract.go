// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package extract reads embedded metadata out of book files, best-effort.

Per format: EPUB parses the OPF package document, PDF scans the info
dictionary and page objects, CBZ counts page images, MOBI/AZW3 reads the
PalmDOC name record. CBR is recognized but yields nothing (no rar reader;
the scan proceeds on path-derived fields alone).

# Failure Discipline

A corrupt or unreadable file never fails the scan: every extractor returns
whatever fields it managed to read, and the caller logs and moves on.
*/
package extract

import (
	"context"
	"fmt"
)

// FileMetadata is what a single file revealed about itself. All fields are
// optional.
type FileMetadata struct {
	Title     string
	Author    string
	PageCount int
	Language  string
	CoverPath string
}

// FromFile dispatches on format and reads embedded metadata.
//
// The returned metadata is valid even when err is non-nil: callers keep the
// fields that were extracted before the failure.
func FromFile(ctx context.Context, format, path string) (FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return FileMetadata{}, err
	}

	switch format {
	case "epub":
		return fromEPUB(path)
	case "pdf":
		return fromPDF(path)
	case "cbz":
		return fromCBZ(path)
	case "mobi", "azw3":
		return fromMOBI(path)
	case "cbr":
		// Recognized, but there is no embedded read for rar archives.
		return FileMetadata{}, nil
	default:
		return FileMetadata{}, fmt.Errorf("extract: unsupported format %q", format)
	}
}
