package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mycoledger/mycoledger/internal/costing"
	"github.com/mycoledger/mycoledger/internal/crm"
	"github.com/mycoledger/mycoledger/internal/documents"
	"github.com/mycoledger/mycoledger/internal/finance"
	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/observability"
	"github.com/mycoledger/mycoledger/internal/platform/mail"
	"github.com/mycoledger/mycoledger/internal/procurement"
	"github.com/mycoledger/mycoledger/internal/sales"
	"github.com/mycoledger/mycoledger/internal/shared"
)

// Services holds the domain services shared by the server, the worker and the CLI.
type Services struct {
	Sales       *sales.Service
	SalesRepo   *sales.Repository
	Customers   *crm.Service
	Inventory   *inventory.Service
	Procurement *procurement.Service
	Costing     *costing.Service
	CostRepo    *costing.Repository
	Finance     *finance.Service
	Documents   *documents.Service
}

// ServiceParams are the infrastructure handles the services are built on.
// Redis is optional; without it locks are process-local and the dashboard is
// computed on every request.
type ServiceParams struct {
	Config     *Config
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	EmailQueue documents.EmailQueue
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

// NewServices wires every domain service.
func NewServices(p ServiceParams) *Services {
	cfg := p.Config
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inventory.DefaultUnitPrice = cfg.UnitPrice()

	auditLogger := shared.NewAuditLogger(p.Pool)
	idempotencyStore := shared.NewIdempotencyStore(p.Pool)

	inventoryService := inventory.NewService(inventory.NewRepository(p.Pool), auditLogger,
		inventory.ServiceConfig{LowStockThreshold: cfg.LowStockDefaultThreshold}, logger)
	procurementService := procurement.NewService(procurement.NewRepository(p.Pool))
	costRepo := costing.NewRepository(p.Pool)
	costingService := costing.NewService(costRepo, costing.NewRateStore(p.Pool), logger)
	customerRepo := crm.NewRepository(p.Pool)

	var (
		locker       shared.RecordLocker
		financeCache *finance.Cache
	)
	if p.Redis != nil {
		locker = shared.NewRedisLocker(p.Redis, shared.LockOptions{TTL: cfg.SalesLockTTL, Wait: cfg.SalesLockWait})
		financeCache = finance.NewCache(p.Redis, 10*time.Minute)
	} else {
		locker = shared.NewMemoryLocker(cfg.SalesLockWait)
	}

	salesRepo := sales.NewRepository(p.Pool)
	deps := sales.ServiceDeps{
		Store:       salesRepo,
		Stock:       sales.NewInventoryReserver(inventoryService),
		Customers:   crm.NewSalesDirectory(customerRepo),
		Locker:      locker,
		Audit:       auditLogger,
		Idempotency: idempotencyStore,
		Logger:      logger,
	}
	if p.Metrics != nil {
		deps.Metrics = p.Metrics
	}
	if financeCache != nil {
		deps.Changes = financeCache
		costingService.WithChanges(financeCache)
	}
	salesService := sales.NewService(deps)

	financeService := finance.NewService(finance.Sources{
		Sales:          salesService,
		PurchaseOrders: procurementService,
		Costs:          costingService,
		Stock:          inventoryService,
		Budgets:        finance.NewBudgetRepository(p.Pool),
	}, financeCache, logger)
	if p.Metrics != nil {
		financeService.WithObserver(p.Metrics)
	}

	mailer := mail.NewMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	documentService := documents.NewService(salesService, p.EmailQueue, mailer, documents.Config{
		Company:    cfg.Company(),
		StorageDir: cfg.DocumentStorageDir,
	}, logger)

	return &Services{
		Sales:       salesService,
		SalesRepo:   salesRepo,
		Customers:   crm.NewService(customerRepo, salesService, logger),
		Inventory:   inventoryService,
		Procurement: procurementService,
		Costing:     costingService,
		CostRepo:    costRepo,
		Finance:     financeService,
		Documents:   documentService,
	}
}

// RefreshDashboard drops cached dashboards, used after bulk imports.
func (s *Services) RefreshDashboard(ctx context.Context) error {
	return s.Finance.Invalidate(ctx)
}
