package commands

import (
	"context"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/export"
	"github.com/joseph-ayodele/purchase-orders/internal/extract"
	"github.com/joseph-ayodele/purchase-orders/internal/ingest"
	"github.com/joseph-ayodele/purchase-orders/internal/merge"
	"github.com/joseph-ayodele/purchase-orders/internal/orders"
	"github.com/joseph-ayodele/purchase-orders/internal/pipeline"
	"github.com/joseph-ayodele/purchase-orders/internal/repository"
)

// app holds the wired services for one command run.
type app struct {
	db        *repository.DB
	repo      repository.OrderRepository
	orders    *orders.Service
	export    *export.Service
	processor *pipeline.Processor
}

// openApp wires the pipeline and, when withStore is set, the order store.
func openApp(ctx context.Context, withStore bool) (*app, error) {
	a := &app{}
	if withStore {
		db, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.repo = repository.NewOrderRepository(db, logger)
		a.orders = orders.NewService(a.repo, logger)
		a.export = export.NewService(a.orders, logger)
	}

	merger := merge.New(merge.Config{
		HeaderPolicy:    constants.HeaderPolicy(cfg.Pipeline.HeaderPolicy),
		ArtifactColumns: cfg.Pipeline.ArtifactColumns,
	}, logger)
	a.processor = pipeline.NewProcessor(logger,
		extract.NewExtractor(logger),
		merger,
		ingest.NewFSIngestor(logger),
		a.repo,
		cfg.Pipeline.PageWorkers,
	)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		repository.Close(a.db, logger)
	}
}
