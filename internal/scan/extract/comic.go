// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package extract

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// # CBZ (zip of page images)

// comicPageExtensions are the archive members counted as pages.
var comicPageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// fromCBZ counts page images in the archive. Comic archives carry no title
// or author metadata; the page count is the whole harvest.
func fromCBZ(filePath string) (FileMetadata, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("extract: open cbz: %w", err)
	}
	defer func() { _ = reader.Close() }()

	pages := 0
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Base(file.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		if comicPageExtensions[strings.ToLower(path.Ext(name))] {
			pages++
		}
	}

	return FileMetadata{PageCount: pages}, nil
}
