// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// # EPUB (OPF over zip)

// container.xml names the OPF package document inside the archive.
type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// The OPF package document carries Dublin Core metadata and the spine.
type epubPackage struct {
	Metadata struct {
		Titles    []string `xml:"title"`
		Creators  []string `xml:"creator"`
		Languages []string `xml:"language"`
	} `xml:"metadata"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

/*
fromEPUB opens the zip container, follows META-INF/container.xml to the OPF
document, and reads title, creator, and language. The spine length stands in
for a page count — EPUB has no physical pages, and readers treat spine items
as the coarse unit of position.
*/
func fromEPUB(filePath string) (FileMetadata, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("extract: open epub: %w", err)
	}
	defer func() { _ = reader.Close() }()

	opfPath, err := epubOPFPath(&reader.Reader)
	if err != nil {
		return FileMetadata{}, err
	}

	payload, err := readZipFile(&reader.Reader, opfPath)
	if err != nil {
		return FileMetadata{}, err
	}

	var document epubPackage
	if err := xml.Unmarshal(payload, &document); err != nil {
		return FileMetadata{}, fmt.Errorf("extract: parse opf: %w", err)
	}

	metadata := FileMetadata{}
	if len(document.Metadata.Titles) > 0 {
		metadata.Title = strings.TrimSpace(document.Metadata.Titles[0])
	}
	if len(document.Metadata.Creators) > 0 {
		metadata.Author = strings.TrimSpace(document.Metadata.Creators[0])
	}
	if len(document.Metadata.Languages) > 0 {
		metadata.Language = strings.TrimSpace(document.Metadata.Languages[0])
	}
	metadata.PageCount = len(document.Spine.ItemRefs)

	return metadata, nil
}

// epubOPFPath locates the package document via container.xml.
func epubOPFPath(reader *zip.Reader) (string, error) {
	payload, err := readZipFile(reader, "META-INF/container.xml")
	if err != nil {
		return "", err
	}

	var container epubContainer
	if err := xml.Unmarshal(payload, &container); err != nil {
		return "", fmt.Errorf("extract: parse container.xml: %w", err)
	}
	if len(container.Rootfiles) == 0 || container.Rootfiles[0].FullPath == "" {
		return "", fmt.Errorf("extract: epub container names no rootfile")
	}

	return container.Rootfiles[0].FullPath, nil
}

// readZipFile returns one archive member's bytes.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if path.Clean(file.Name) != path.Clean(name) {
			continue
		}

		handle, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("extract: open %s: %w", name, err)
		}
		defer func() { _ = handle.Close() }()

		return io.ReadAll(handle)
	}

	return nil, fmt.Errorf("extract: %s not present in archive", name)
}
