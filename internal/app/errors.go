package app

import "errors"

var (
	// ErrInvalidQuery rejects blank search queries before any retrieval work runs.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIngestInProgress means another run currently holds the document's
	// ingest lock, in this process or elsewhere.
	ErrIngestInProgress = errors.New("ingestion already in progress for this document")
)
