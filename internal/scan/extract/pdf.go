// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
)

// # PDF (info dictionary + page objects)

// pdfReadCap bounds how much of a PDF is scanned for metadata. Info
// dictionaries live near one end of the file; 4 MiB from each end covers
// real-world documents without reading gigabyte scans whole.
const pdfReadCap = 4 << 20

var (
	pdfTitlePattern  = regexp.MustCompile(`/Title\s*\(([^)]*)\)`)
	pdfAuthorPattern = regexp.MustCompile(`/Author\s*\(([^)]*)\)`)

	// /Type /Page objects, excluding the /Pages tree nodes.
	pdfPagePattern = regexp.MustCompile(`/Type\s*/Page[^s]`)

	// /Count N inside the page tree root is authoritative when present.
	pdfCountPattern = regexp.MustCompile(`/Type\s*/Pages[^>]*?/Count\s+(\d+)`)
)

/*
fromPDF scans the head and tail of the file for the info dictionary
(/Title, /Author) and the page tree.

This is a shallow reader by intent: it handles the unencrypted, uncompressed
dictionaries that dominate ebook PDFs and silently extracts nothing from the
rest. Page count prefers the page tree /Count and falls back to counting
/Type /Page objects.
*/
func fromPDF(filePath string) (FileMetadata, error) {
	payload, err := readEnds(filePath, pdfReadCap)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("extract: read pdf: %w", err)
	}

	metadata := FileMetadata{}

	if match := pdfTitlePattern.FindSubmatch(payload); match != nil {
		metadata.Title = decodePDFString(match[1])
	}
	if match := pdfAuthorPattern.FindSubmatch(payload); match != nil {
		metadata.Author = decodePDFString(match[1])
	}

	if match := pdfCountPattern.FindSubmatch(payload); match != nil {
		fmt.Sscanf(string(match[1]), "%d", &metadata.PageCount)
	} else if pages := pdfPagePattern.FindAll(payload, -1); pages != nil {
		metadata.PageCount = len(pages)
	}

	return metadata, nil
}

// readEnds returns up to cap bytes from each end of the file, concatenated.
// Small files are read whole.
func readEnds(filePath string, limit int64) ([]byte, error) {
	handle, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = handle.Close() }()

	info, err := handle.Stat()
	if err != nil {
		return nil, err
	}

	if info.Size() <= 2*limit {
		return io.ReadAll(handle)
	}

	head := make([]byte, limit)
	if _, err := io.ReadFull(handle, head); err != nil {
		return nil, err
	}

	tail := make([]byte, limit)
	if _, err := handle.ReadAt(tail, info.Size()-limit); err != nil && err != io.EOF {
		return nil, err
	}

	return append(head, tail...), nil
}

// decodePDFString strips the escapes of a literal PDF string.
func decodePDFString(raw []byte) string {
	raw = bytes.ReplaceAll(raw, []byte(`\(`), []byte("("))
	raw = bytes.ReplaceAll(raw, []byte(`\)`), []byte(")"))
	raw = bytes.ReplaceAll(raw, []byte(`\\`), []byte(`\`))

	// UTF-16BE literals start with a BOM; decode the simple BMP subset.
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		var builder bytes.Buffer
		for i := 2; i+1 < len(raw); i += 2 {
			builder.WriteRune(rune(uint16(raw[i])<<8 | uint16(raw[i+1])))
		}
		return builder.String()
	}

	return string(raw)
}
