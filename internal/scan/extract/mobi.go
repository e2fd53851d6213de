// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package extract

import (
	"bytes"
	"fmt"
	"os"
)

// # MOBI / AZW3 (PalmDOC container)

// palmHeaderSize is the fixed PalmDOC database header: a 32-byte name
// record followed by version, timestamps, and record counts.
const palmHeaderSize = 78

/*
fromMOBI reads the PalmDOC name record, which Kindle tooling fills with the
book title (truncated to 31 bytes). Author and page count are not present
at a fixed offset, so only the title is harvested.
*/
func fromMOBI(filePath string) (FileMetadata, error) {
	handle, err := os.Open(filePath)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("extract: open mobi: %w", err)
	}
	defer func() { _ = handle.Close() }()

	header := make([]byte, palmHeaderSize)
	if _, err := handle.Read(header); err != nil {
		return FileMetadata{}, fmt.Errorf("extract: read mobi header: %w", err)
	}

	// Offsets 60..68 carry the type/creator tags; BOOKMOBI marks the format.
	if !bytes.Equal(header[60:68], []byte("BOOKMOBI")) {
		return FileMetadata{}, fmt.Errorf("extract: not a mobi container")
	}

	name := header[:32]
	if cut := bytes.IndexByte(name, 0); cut >= 0 {
		name = name[:cut]
	}

	return FileMetadata{Title: string(name)}, nil
}
