// Package pipeline runs extract, merge and optional persistence for one document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/dataset"
	"github.com/joseph-ayodele/purchase-orders/internal/entity"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
	"github.com/joseph-ayodele/purchase-orders/internal/ingest"
	"github.com/joseph-ayodele/purchase-orders/internal/merge"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
	"github.com/joseph-ayodele/purchase-orders/internal/utils"
)

// ErrPersistenceDisabled is returned when persistence is requested from a processor without a store.
var ErrPersistenceDisabled = errors.New("no order store configured")

// PageReport is the per-page outcome included in a Result.
type PageReport struct {
	Page     int    `json:"page"`
	Source   string `json:"source"`
	Strategy string `json:"strategy,omitempty"`
	Rows     int    `json:"rows"`
	Error    string `json:"error,omitempty"`
}

// Result is the outcome of processing one document. It is built once and never
// modified afterwards.
type Result struct {
	DocumentID string              `json:"document_id"`
	Name       string              `json:"name"`
	Dataset    *dataset.Table      `json:"-"`
	Orders     []*entity.Order     `json:"orders"`
	Summary    entity.Summary      `json:"summary"`
	Pages      []PageReport        `json:"pages"`
	Warnings   []string            `json:"warnings"`
	Upsert     *entity.UpsertStats `json:"upsert,omitempty"`
	Elapsed    time.Duration       `json:"elapsed_ns"`
	// Issues holds the typed recovered errors behind Warnings.
	Issues []error `json:"-"`
}

// Processor coordinates page extraction, merge and upsert.
type Processor struct {
	Logger    *slog.Logger
	Extractor *extract.Extractor
	Merger    *merge.Merger
	Loader    ingest.Loader
	// Orders may be nil, in which case documents can only be processed without persisting.
	Orders  repository.OrderRepository
	workers int
}

func NewProcessor(logger *slog.Logger, ex *extract.Extractor, mg *merge.Merger, loader ingest.Loader, orders repository.OrderRepository, pageWorkers int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if pageWorkers < 1 {
		pageWorkers = 1
	}
	return &Processor{Logger: logger, Extractor: ex, Merger: mg, Loader: loader, Orders: orders, workers: pageWorkers}
}

// ProcessDirectory loads the page fragments under dir and processes them as one document.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string, persist bool) (*Result, error) {
	if p.Loader == nil {
		return nil, fmt.Errorf("processor: no loader configured")
	}
	doc, err := p.Loader.LoadDirectory(ctx, dir)
	if err != nil {
		p.Logger.Error("processor.load.failed", "dir", dir, "err", err)
		return nil, err
	}
	var loadIssues []error
	for _, r := range doc.Results {
		if r.Err != "" {
			loadIssues = append(loadIssues, &common.PageFormatError{Page: r.Page, Source: r.SourcePath, Cause: errors.New(r.Err)})
		}
	}
	return p.process(ctx, doc.Name, doc.Pages, persist, loadIssues)
}

// ProcessPages processes already loaded page fragments, given in page order.
func (p *Processor) ProcessPages(ctx context.Context, name string, pages []extract.Page, persist bool) (*Result, error) {
	return p.process(ctx, name, pages, persist, nil)
}

func (p *Processor) process(ctx context.Context, name string, pages []extract.Page, persist bool, issues []error) (*Result, error) {
	start := time.Now()
	if persist && p.Orders == nil {
		return nil, common.NewAppError("INVALID_ARGUMENT", "persist requested", ErrPersistenceDisabled)
	}

	docID := uuid.NewString()
	ctx = common.WithDocumentID(ctx, docID)
	logger := common.LoggerFromContext(ctx, p.Logger)
	logger.Info("processor.start", "name", name, "pages", len(pages), "persist", persist)

	pageResults, err := p.extractAll(ctx, pages)
	if err != nil {
		logger.Error("processor.extract.failed", "err", err)
		return nil, err
	}

	reports := make([]PageReport, len(pageResults))
	for i, r := range pageResults {
		reports[i] = PageReport{Page: r.Page, Source: r.Source, Strategy: r.Strategy, Rows: len(r.Rows())}
		if r.Err != nil {
			reports[i].Error = r.Err.Error()
			issues = append(issues, r.Err)
		}
		issues = append(issues, r.Warnings...)
	}

	table, err := p.Merger.Merge(ctx, pageResults)
	if err != nil {
		logger.Error("processor.merge.failed", "err", err)
		return nil, err
	}
	orders := utils.ToOrders(table)

	var stats *entity.UpsertStats
	if persist {
		up, err := p.Orders.UpsertBatch(ctx, orders)
		if err != nil {
			logger.Error("processor.upsert.failed", "err", err)
			return nil, err
		}
		stats = &up.Stats
		issues = append(issues, up.Errors...)
	}

	warnings := make([]string, len(issues))
	for i, e := range issues {
		warnings[i] = e.Error()
	}
	res := &Result{
		DocumentID: docID,
		Name:       name,
		Dataset:    table,
		Orders:     orders,
		Summary:    utils.Summarize(orders),
		Pages:      reports,
		Warnings:   warnings,
		Upsert:     stats,
		Elapsed:    time.Since(start),
		Issues:     issues,
	}
	logger.Info("processor.ok",
		"rows", res.Summary.Rows,
		"styles", res.Summary.Styles,
		"warnings", len(warnings),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

// extractAll fans pages out to a bounded number of workers and returns results in page order.
func (p *Processor) extractAll(ctx context.Context, pages []extract.Page) ([]extract.PageResult, error) {
	results := make([]extract.PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, page := range pages {
		g.Go(func() error {
			r, err := p.Extractor.ExtractPage(gctx, page)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
