package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/purchase-orders/internal/async"
	"github.com/joseph-ayodele/purchase-orders/internal/ingest"
	"github.com/joseph-ayodele/purchase-orders/internal/server"
)

var serveOpts struct {
	inbox       string
	initialScan bool
	debounce    time.Duration
	healthEvery time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the gRPC health service and the background job queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		// the inbox is checked before anything starts listening
		var dirs <-chan string
		var watchErrs <-chan error
		if serveOpts.inbox != "" {
			dirs, watchErrs, err = ingest.StartWatcher(ctx, ingest.WatchConfig{
				Root:        serveOpts.inbox,
				InitialScan: serveOpts.initialScan,
				Debounce:    serveOpts.debounce,
			}, logger)
			if err != nil {
				return err
			}
		}

		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			return err
		}
		grpcSrv := grpc.NewServer()
		hs := server.RegisterHealth(grpcSrv)

		queue := async.NewProcessorQueue(a.processor, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)

		srv := server.New(server.Deps{
			Processor:      a.processor,
			Queue:          queue,
			Orders:         a.orders,
			Export:         a.export,
			DB:             a.db,
			JobRoot:        serveOpts.inbox,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, logger)
		httpSrv := &http.Server{
			Addr:              cfg.Server.HTTPAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("http listening", "addr", cfg.Server.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
			return grpcSrv.Serve(lis)
		})
		g.Go(func() error {
			srv.WatchDatabase(gctx, hs, serveOpts.healthEvery)
			return nil
		})
		if dirs != nil {
			g.Go(func() error {
				feedQueue(gctx, queue, dirs, watchErrs)
				return nil
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			hs.Shutdown()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http shutdown failed", "error", err)
			}
			grpcSrv.GracefulStop()
			queue.Shutdown(shutdownCtx)
			return nil
		})
		return g.Wait()
	},
}

// feedQueue enqueues every settled inbox directory as a persisting job.
func feedQueue(ctx context.Context, q async.Queue, dirs <-chan string, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case dir, ok := <-dirs:
			if !ok {
				return
			}
			if _, err := q.Enqueue(ctx, async.Job{Dir: dir, Persist: true}); err != nil {
				logger.Warn("inbox.enqueue.failed", "dir", dir, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("inbox.watch.error", "error", err)
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.inbox, "inbox", "", "watch this directory; each settled subdirectory is queued as a document")
	serveCmd.Flags().BoolVar(&serveOpts.initialScan, "initial-scan", true, "queue subdirectories already in the inbox at start")
	serveCmd.Flags().DurationVar(&serveOpts.debounce, "debounce", 2*time.Second, "quiet period before a changed inbox directory is queued")
	serveCmd.Flags().DurationVar(&serveOpts.healthEvery, "health-interval", 15*time.Second, "store ping interval for the gRPC health status")
}
