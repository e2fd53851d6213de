// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package archive implements the active⇄archived lifecycle driven by
filesystem truth.

The reconciler compares the stored catalog against os.Stat: active books
whose file disappeared are archived with a reason, archived books whose file
reappeared are restored. Both directions use conditional row updates
(WHERE status = ...), so reconciliation is idempotent and safe to run
concurrently with a scan.
*/
package archive

import "time"

// ReasonFileMissing is the reconciler's reason for automatic archival.
const ReasonFileMissing = "file missing"

// ReasonManual is the fallback reason when a manual archive gives none.
const ReasonManual = "archived by operator"

// Entry is the (id, filepath) projection the reconciler walks.
type Entry struct {
	BookID   string
	Filepath string
}

// Result counts what one reconciliation pass did.
type Result struct {
	Checked  int `json:"checked"`
	Archived int `json:"archived"`
	Restored int `json:"restored"`
	Errors   int `json:"errors"`
}

// Stats is the operator view of the archive.
type Stats struct {
	TotalArchived  int            `json:"total_archived"`
	ArchivedLast7d int            `json:"archived_last_7d"`
	ByReason       map[string]int `json:"by_reason"`
}

// ArchivedBook is one archive-surface listing row.
type ArchivedBook struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AuthorName    string    `json:"author_name"`
	FileFormat    string    `json:"file_format"`
	ArchivedAt    time.Time `json:"archived_at"`
	ArchiveReason string    `json:"archive_reason"`
}
