package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mycoledger/mycoledger/cmd/mycoledger/cli"
	"github.com/mycoledger/mycoledger/internal/app"
	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/crm"
	"github.com/mycoledger/mycoledger/internal/documents"
	financehttp "github.com/mycoledger/mycoledger/internal/finance/http"
	"github.com/mycoledger/mycoledger/internal/integration/sheets"
	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/observability"
	"github.com/mycoledger/mycoledger/internal/platform/cache"
	"github.com/mycoledger/mycoledger/internal/platform/db"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve":
		err = serve(ctx, stop, cfg, logger)
	case "import-sheets":
		os.Exit(importSheets(ctx, cfg, logger, args))
	case "jobs":
		os.Exit(jobsCommand(ctx, cfg, args))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "usage: mycoledger [serve|import-sheets|jobs]\nunknown command %q\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd, slog.Any("error", err))
		os.Exit(1)
	}
}

func connect(ctx context.Context, cfg *app.Config, logger *slog.Logger) (*pgxpool.Pool, *redis.Client, error) {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 10, MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, using process-local locks", slog.Any("error", err))
		_ = redisClient.Close()
		redisClient = nil
	}
	return pool, redisClient, nil
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	pool, redisClient, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	services := app.NewServices(app.ServiceParams{
		Config:     cfg,
		Pool:       pool,
		Redis:      redisClient,
		EmailQueue: jobClient,
		Metrics:    metrics,
		Logger:     logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SalesHandler:       sales.NewHandler(logger, services.Sales),
		DocumentsHandler:   documents.NewHandler(logger, services.Documents),
		CustomersHandler:   crm.NewHandler(logger, services.Customers),
		InventoryHandler:   inventory.NewHandler(logger, services.Inventory),
		ProcurementHandler: procurement.NewHandler(logger, services.Procurement),
		CostingHandler:     costing.NewHandler(logger, services.Costing),
		FinanceHandler:     financehttp.NewHandler(logger, services.Finance),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func importSheets(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("import-sheets", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print the result as JSON")
	strict := fs.Bool("strict", false, "exit non-zero when rows were skipped")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	pool, redisClient, err := connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("connect", slog.Any("error", err))
		return 1
	}
	defer pool.Close()
	if redisClient != nil {
		defer redisClient.Close()
	}

	sheetsCfg := sheets.Config{
		CredentialsFile: cfg.SheetsCredentialsFile,
		SpreadsheetID:   cfg.SheetsSpreadsheetID,
		SalesRange:      cfg.SheetsSalesRange,
		CostsRange:      cfg.SheetsCostsRange,
	}
	client, err := sheets.NewClient(ctx, sheetsCfg, logger)
	if err != nil {
		logger.Error("sheets client", slog.Any("error", err))
		return 1
	}
	services := app.NewServices(app.ServiceParams{Config: cfg, Pool: pool, Redis: redisClient, Logger: logger})
	importer := sheets.NewImporter(client, services.SalesRepo, services.CostRepo, services.Finance, sheetsCfg, logger)
	return cli.ImportCommand(ctx, importer, cli.ImportOptions{JSONOutput: *jsonOut, Strict: *strict})
}

func jobsCommand(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "usage: mycoledger jobs [inspect|retries|email --sale ID --type TYPE --to ADDRESS]")
		return 2
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: %v\n", err)
		return 1
	}
	defer jobsCLI.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	switch args[0] {
	case "inspect":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs inspect: %v\n", err)
			return 1
		}
		_ = enc.Encode(stats)
	case "retries":
		infos, err := jobsCLI.ListRetry(ctx, 20)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs retries: %v\n", err)
			return 1
		}
		for _, info := range infos {
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\tretried=%d\t%s\n", info.ID, info.Type, info.Retried, info.LastErr)
		}
	case "email":
		fs := flag.NewFlagSet("jobs email", flag.ContinueOnError)
		saleID := fs.String("sale", "", "sales record id")
		docType := fs.String("type", "INVOICE", "document type")
		to := fs.String("to", "", "recipient address")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		info, err := jobsCLI.TriggerDocumentEmail(ctx, *saleID, *docType, *to)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs email: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(os.Stdout, "enqueued %s (%s)\n", info.ID, info.Queue)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "jobs: unknown subcommand %q\n", args[0])
		return 2
	}
	return 0
}
