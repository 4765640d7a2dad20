package ingest

import (
	"context"

	"github.com/joseph-ayodele/purchase-orders/internal/extract"
)

// IngestionResult is the per-file load outcome.
type IngestionResult struct {
	SourcePath string
	Page       int
	Size       int64
	Err        string
}

// DirStats summarizes a directory load.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Document is the ordered set of page fragments found in one directory.
type Document struct {
	Name    string
	Pages   []extract.Page
	Results []IngestionResult
	Stats   DirStats
}

// Loader is the behavior the pipeline depends on.
type Loader interface {
	// LoadFile reads a single page fragment.
	LoadFile(ctx context.Context, path string, index int) (extract.Page, error)
	// LoadDirectory reads all page fragments under root in page order.
	LoadDirectory(ctx context.Context, root string) (*Document, error)
}
