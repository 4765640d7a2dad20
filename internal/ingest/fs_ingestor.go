package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
)

// maxPageBytes caps a single fragment; the extraction service emits a few KB per page.
const maxPageBytes = 8 << 20

// FSIngestor reads page fragments from the local filesystem.
type FSIngestor struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{SkipHidden: true, logger: logger}
}

// LoadFile reads one page fragment. The page index is supplied by the caller.
func (i *FSIngestor) LoadFile(ctx context.Context, path string, index int) (extract.Page, error) {
	if err := ctx.Err(); err != nil {
		return extract.Page{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext == "" || !AllowedExt(ext) {
		return extract.Page{}, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	st, err := os.Stat(path)
	if err != nil {
		return extract.Page{}, err
	}
	if st.Size() > maxPageBytes {
		return extract.Page{}, fmt.Errorf("page too large: %d bytes", st.Size())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return extract.Page{}, err
	}
	return extract.Page{Index: index, Source: filepath.Base(path), Text: string(b)}, nil
}

// LoadDirectory walks root, skips hidden entries if requested, and reads every page
// fragment in natural page order. Files that cannot be read are reported in the
// results and left out; the pipeline decides whether what remains is usable.
func (i *FSIngestor) LoadDirectory(ctx context.Context, root string) (*Document, error) {
	if strings.TrimSpace(root) == "" {
		return nil, common.NewAppError("INVALID_ARGUMENT", "dir is required", common.ErrInvalidInput)
	}
	st, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("directory %s", root), common.ErrNotFound)
		}
		return nil, err
	}
	if !st.IsDir() {
		return nil, common.NewAppError("INVALID_ARGUMENT", fmt.Sprintf("%s is not a directory", root), common.ErrInvalidInput)
	}

	doc := &Document{Name: filepath.Base(filepath.Clean(root))}
	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		doc.Stats.Scanned++
		if walkErr != nil {
			doc.Results = append(doc.Results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			doc.Stats.Failed++
			return nil
		}
		if i.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		doc.Stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}

	SortNatural(paths)
	for n, path := range paths {
		page, err := i.LoadFile(ctx, path, n+1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			i.logger.Warn("ingest.page.failed", "path", path, "error", err)
			doc.Results = append(doc.Results, IngestionResult{SourcePath: path, Page: n + 1, Err: err.Error()})
			doc.Stats.Failed++
			continue
		}
		doc.Pages = append(doc.Pages, page)
		doc.Results = append(doc.Results, IngestionResult{SourcePath: path, Page: n + 1, Size: int64(len(page.Text))})
		doc.Stats.Succeeded++
	}

	i.logger.Info("ingest.directory.ok", "dir", root, "matched", doc.Stats.Matched, "pages", len(doc.Pages), "failed", doc.Stats.Failed)
	return doc, nil
}
