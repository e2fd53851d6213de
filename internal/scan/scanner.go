// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scan implements the library scan pipeline.

One scan walks the configured roots, and for every supported file:
identifier extraction → embedded metadata → optional external lookup →
fusion → author ensure → book upsert → auto-tagging. The pass ends with a
full archive reconciliation, so the index always converges to filesystem
truth.

# Concurrency

A walker goroutine streams candidates over a bounded channel into an
errgroup worker pool (default NumCPU workers). Storage writes are
serialized per author name and per filepath through keyed mutexes;
provider call pressure is bounded inside the resolver's per-provider
limiters. The pipeline is cancellable; in-flight files finish, queued ones
are dropped.

# Idempotence

Running the same scan twice converges: books upsert by unique filepath,
authors by unique name, tags by unique pair. The second pass reports
everything as skipped.
*/
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/tosho/internal/catalog/archive"
	"github.com/taibuivan/tosho/internal/catalog/author"
	"github.com/taibuivan/tosho/internal/catalog/book"
	"github.com/taibuivan/tosho/internal/catalog/tag"
	"github.com/taibuivan/tosho/internal/metadata"
	"github.com/taibuivan/tosho/internal/platform/constants"
	"github.com/taibuivan/tosho/internal/scan/extract"
)

// # Result Accounting

// Result counts what one scan pass did.
type Result struct {
	Discovered int `json:"discovered"`
	Indexed    int `json:"indexed"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	Archived   int `json:"archived"`
	Restored   int `json:"restored"`
	Errors     int `json:"errors"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// counter is the thread-safe tally the workers write into.
type counter struct {
	mu     sync.Mutex
	result Result
}

func (c *counter) add(update func(*Result)) {
	c.mu.Lock()
	update(&c.result)
	c.mu.Unlock()
}

// # Scanner

// Options configures one scan invocation.
type Options struct {
	// Roots are the library directories to walk.
	Roots []string

	// ExternalLookup toggles resolver calls for this pass.
	ExternalLookup bool

	// Workers bounds the pool; zero means runtime.NumCPU.
	Workers int
}

// Scanner orchestrates the pipeline.
type Scanner struct {
	books    *book.Service
	authors  *author.Service
	tags     *tag.Service
	archiver *archive.Service
	resolver *metadata.Resolver
	logger   *slog.Logger

	walker *Walker

	// authorLocks and pathLocks serialize storage writes per entity.
	authorLocks *keyedMutex
	pathLocks   *keyedMutex

	// running guards against overlapping passes from scheduler + watcher.
	running sync.Mutex
}

// NewScanner wires the pipeline.
func NewScanner(
	books *book.Service,
	authors *author.Service,
	tags *tag.Service,
	archiver *archive.Service,
	resolver *metadata.Resolver,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		books:       books,
		authors:     authors,
		tags:        tags,
		archiver:    archiver,
		resolver:    resolver,
		logger:      logger,
		walker:      NewWalker(logger),
		authorLocks: newKeyedMutex(),
		pathLocks:   newKeyedMutex(),
	}
}

/*
Scan runs one full pass over the given roots.

Only one pass runs at a time; a second caller blocks until the first
finishes (the scheduler and the filesystem watcher can both request scans).
Per-file failures are logged and counted, never fatal. The pass finishes
with a reconciliation sweep whose archive/restore counts fold into the
result.
*/
func (scanner *Scanner) Scan(ctx context.Context, options Options) (*Result, error) {
	scanner.running.Lock()
	defer scanner.running.Unlock()

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tally := &counter{result: Result{StartedAt: time.Now()}}

	scanner.logger.Info("scan_started",
		slog.Any("roots", options.Roots),
		slog.Int("workers", workers),
		slog.Bool("external_lookup", options.ExternalLookup),
	)

	candidates := scanner.walker.Walk(ctx, options.Roots)

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for candidate := range candidates {
				if groupCtx.Err() != nil {
					// Cancelled: stop accepting new files, drain the channel.
					continue
				}
				scanner.processFile(groupCtx, candidate, options, tally)
				scanner.checkpoint(tally)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		// Cancelled mid-pass: report what completed, skip reconciliation.
		tally.result.Elapsed = time.Since(tally.result.StartedAt)
		return &tally.result, err
	}

	// Filesystem truth sweep across the full catalog.
	reconciled, err := scanner.archiver.Reconcile(ctx)
	if err != nil {
		scanner.logger.Error("scan_reconcile_failed", slog.Any("error", err))
		tally.add(func(result *Result) { result.Errors++ })
	} else {
		tally.add(func(result *Result) {
			result.Archived = reconciled.Archived
			result.Restored = reconciled.Restored
		})
	}

	tally.result.Elapsed = time.Since(tally.result.StartedAt)

	scanner.logger.Info("scan_completed",
		slog.Int("discovered", tally.result.Discovered),
		slog.Int("indexed", tally.result.Indexed),
		slog.Int("updated", tally.result.Updated),
		slog.Int("skipped", tally.result.Skipped),
		slog.Int("archived", tally.result.Archived),
		slog.Int("restored", tally.result.Restored),
		slog.Int("errors", tally.result.Errors),
		slog.Duration("elapsed", tally.result.Elapsed),
	)

	return &tally.result, nil
}

// # Per-File Pipeline

// processFile runs the full extract → fuse → persist chain for one file.
func (scanner *Scanner) processFile(ctx context.Context, candidate Candidate, options Options, tally *counter) {
	tally.add(func(result *Result) { result.Discovered++ })

	record, signals, external, authorName := scanner.buildRecord(ctx, candidate, options)

	// Serialize per author name, then per filepath. Lock order is fixed, so
	// two workers can never deadlock across the pair.
	scanner.authorLocks.Lock(authorName)
	bookAuthor, err := scanner.authors.EnsureByName(ctx, authorName)
	if err == nil && external != nil && len(external.Categories) > 0 {
		// Provider output may fill author fields that are still empty.
		enrichment := author.Enrichment{Genres: tag.MapCategoriesToGenres(external.Categories)}
		if enrichErr := scanner.authors.Enrich(ctx, bookAuthor.ID, enrichment); enrichErr != nil {
			scanner.logger.Debug("scan_author_enrich_failed",
				slog.String("author", authorName),
				slog.Any("error", enrichErr),
			)
		}
	}
	scanner.authorLocks.Unlock(authorName)
	if err != nil {
		tally.add(func(result *Result) { result.Errors++ })
		scanner.logger.Warn("scan_author_failed",
			slog.String("path", candidate.Path),
			slog.Any("error", err),
		)
		return
	}
	record.AuthorID = bookAuthor.ID

	scanner.pathLocks.Lock(candidate.Path)
	persisted, outcome, err := scanner.books.Merge(ctx, *record)
	scanner.pathLocks.Unlock(candidate.Path)
	if err != nil {
		tally.add(func(result *Result) { result.Errors++ })
		scanner.logger.Warn("scan_upsert_failed",
			slog.String("path", candidate.Path),
			slog.Any("error", err),
		)
		return
	}

	switch outcome {
	case book.OutcomeInserted:
		tally.add(func(result *Result) { result.Indexed++ })
	case book.OutcomeUpdated:
		tally.add(func(result *Result) { result.Updated++ })
	default:
		tally.add(func(result *Result) { result.Skipped++ })
	}

	// Auto-tags converge to the same closure on every pass; failures here
	// degrade the tag set, not the index.
	if err := scanner.tags.AutoApply(ctx, persisted.ID, signals); err != nil {
		scanner.logger.Warn("scan_auto_tag_failed",
			slog.String("book_id", persisted.ID),
			slog.Any("error", err),
		)
	}
}

/*
buildRecord fuses every source for one file into the canonical upsert.

Title and author precedence: external > file metadata > path > "Unknown".
Remaining fields merge field-wise, first non-empty wins.
*/
func (scanner *Scanner) buildRecord(ctx context.Context, candidate Candidate, options Options) (*book.Upsert, tag.Signals, *metadata.Record, string) {
	pathAttributes := AttributesFromPath(candidate.Root, candidate.Path)
	identifier := ExtractIdentifier(filepath.Base(candidate.Path))

	// Embedded metadata is best-effort; keep partial fields on failure.
	fileMetadata, err := extract.FromFile(ctx, candidate.Format, candidate.Path)
	if err != nil {
		scanner.logger.Debug("scan_extract_partial",
			slog.String("path", candidate.Path),
			slog.Any("error", err),
		)
	}

	// External lookup is opt-in per pass and requires an identifier; files
	// without one never trigger provider calls.
	var external *metadata.Record
	if options.ExternalLookup && identifier != "" {
		external = scanner.resolver.LookupByID(ctx, identifier)
	}

	title := firstNonEmpty(externalTitle(external), fileMetadata.Title, pathAttributes.Title)
	authorName := firstNonEmpty(externalAuthor(external), fileMetadata.Author, pathAttributes.Author, UnknownAuthor)

	record := &book.Upsert{
		Name:       title,
		Filepath:   candidate.Path,
		ISBN:       identifier,
		FileSize:   candidate.Size,
		FileFormat: candidate.Format,
	}

	signals := tag.Signals{
		Format:   candidate.Format,
		Language: fileMetadata.Language,
	}

	if fileMetadata.PageCount > 0 {
		pages := fileMetadata.PageCount
		record.PageCount = &pages
	}

	if external != nil {
		record.Publisher = external.Publisher
		record.PublicationDate = external.PublishedDate
		record.Description = external.Description
		record.CoverPath = external.CoverURL
		if external.PageCount > 0 {
			pages := external.PageCount
			record.PageCount = &pages
		}
		if record.ISBN == "" {
			record.ISBN = firstNonEmpty(external.Identifiers.ISBN13, external.Identifiers.ISBN10)
		}

		signals.MaturityRating = external.MaturityRating
		signals.Categories = external.Categories
		signals.Series = external.Series
		if signals.Language == "" {
			signals.Language = external.Language
		}
	}

	return record, signals, external, authorName
}

// checkpoint logs progress every ScanCheckpointEvery processed files.
func (scanner *Scanner) checkpoint(tally *counter) {
	tally.mu.Lock()
	processed := tally.result.Indexed + tally.result.Updated + tally.result.Skipped + tally.result.Errors
	snapshot := tally.result
	tally.mu.Unlock()

	if processed == 0 || processed%constants.ScanCheckpointEvery != 0 {
		return
	}

	scanner.logger.Info("scan_progress",
		slog.Int("processed", processed),
		slog.Int("indexed", snapshot.Indexed),
		slog.Int("updated", snapshot.Updated),
		slog.Int("errors", snapshot.Errors),
	)
}

// # Small Helpers

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func externalTitle(record *metadata.Record) string {
	if record == nil {
		return ""
	}
	return record.Title
}

func externalAuthor(record *metadata.Record) string {
	if record == nil {
		return ""
	}
	if len(record.Authors) == 0 {
		return ""
	}
	return record.Authors[0]
}

// String renders the result for operator logs.
func (result *Result) String() string {
	return fmt.Sprintf("discovered=%d indexed=%d updated=%d skipped=%d archived=%d restored=%d errors=%d",
		result.Discovered, result.Indexed, result.Updated, result.Skipped,
		result.Archived, result.Restored, result.Errors)
}
