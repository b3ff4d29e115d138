// Package ingest composes fetching, normalization, chunking, and vector
// storage into the per-URL indexing pipeline.
package ingest

import (
	"context"
	"fmt"
	"log"

	"urlresearch/internal/splitter"
	"urlresearch/internal/vector"
	"urlresearch/internal/web"
)

// Error wraps a per-URL ingestion failure. Batch callers catch it per
// URL and continue with the rest.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest: %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Failure records one URL that could not be ingested.
type Failure struct {
	URL string
	Err error
}

// Report summarizes a batch ingestion run.
type Report struct {
	// Indexed lists URLs that were fully ingested, in input order.
	Indexed []string

	// Failures lists URLs that were skipped, with their causes.
	Failures []Failure

	// FullTexts maps each indexed URL to its normalized page text,
	// for archival by the caller.
	FullTexts map[string]string
}

// Ingestor runs the fetch → normalize → chunk → embed → store sequence
// for single URLs.
type Ingestor struct {
	fetcher  *web.Fetcher
	splitter *splitter.Splitter
	store    vector.Store
}

// New creates an Ingestor. A nil fetcher or splitter gets defaults.
func New(fetcher *web.Fetcher, sp *splitter.Splitter, store vector.Store) *Ingestor {
	if fetcher == nil {
		fetcher = web.NewFetcher(nil, "")
	}
	if sp == nil {
		sp = splitter.Default()
	}
	return &Ingestor{fetcher: fetcher, splitter: sp, store: store}
}

// Ingest fetches one URL, chunks its text, and stores the chunks with
// {url, chunk_index} metadata in a single batch. It returns the full
// normalized page text so the caller can archive it. A page that yields
// zero chunks is a no-op success: the store is not touched.
func (ing *Ingestor) Ingest(ctx context.Context, url string) (string, error) {
	text, err := ing.fetcher.FetchText(ctx, url)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	chunks := ing.splitter.Split(text)
	if len(chunks) == 0 {
		return text, nil
	}

	metas := make([]vector.Metadata, len(chunks))
	for i := range chunks {
		metas[i] = vector.Metadata{URL: url, ChunkIndex: i}
	}

	if err := ing.store.AddTexts(ctx, chunks, metas); err != nil {
		return "", &Error{URL: url, Err: err}
	}

	return text, nil
}

// IngestAll ingests each URL in sequence. One bad URL never aborts the
// rest of the batch; failures are collected in the report. Cancellation
// is honored between URLs, not mid-pipeline.
func (ing *Ingestor) IngestAll(ctx context.Context, urls []string) Report {
	report := Report{FullTexts: make(map[string]string)}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, Failure{URL: url, Err: err})
			continue
		}

		text, err := ing.Ingest(ctx, url)
		if err != nil {
			log.Printf("ingest: skipping %s: %v", url, err)
			report.Failures = append(report.Failures, Failure{URL: url, Err: err})
			continue
		}

		report.Indexed = append(report.Indexed, url)
		report.FullTexts[url] = text
	}

	return report
}
