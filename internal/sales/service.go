package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mycoledger/mycoledger/internal/shared"
)

// Store is the persistence collaborator for sales records.
type Store interface {
	NextInvoiceID(ctx context.Context) (string, error)
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	// SetStatus moves id from one status to another, failing with
	// ErrStaleStatus when the stored status is no longer from.
	SetStatus(ctx context.Context, id string, from, to Status) (Record, error)
}

// StockReserver holds finished goods against a sale. Reserve is all-or-none
// and reports whether it created the reservation.
type StockReserver interface {
	Reserve(ctx context.Context, saleID string, items []LineItem) (bool, error)
	Release(ctx context.Context, saleID string) error
}

// CustomerDirectory resolves customers. Unknown ids yield ErrUnknownCustomer.
type CustomerDirectory interface {
	Lookup(ctx context.Context, customerID string) (CustomerSnapshot, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
	Trail(ctx context.Context, entity, entityID string) ([]shared.AuditLog, error)
}

const auditEntity = "sales_record"

// IdempotencyPort claims request keys.
type IdempotencyPort interface {
	Claim(ctx context.Context, scope, key string) error
	Forget(ctx context.Context, scope, key string) error
}

// TransitionRecorder counts status changes.
type TransitionRecorder interface {
	ObserveSalesTransition(from, to string)
}

// ChangeNotifier is told when the ledger changed so derived views refresh.
type ChangeNotifier interface {
	Bump(ctx context.Context) error
}

// ServiceDeps wires the collaborators of Service. Audit, Idempotency, Metrics
// and Changes are optional.
type ServiceDeps struct {
	Store       Store
	Stock       StockReserver
	Customers   CustomerDirectory
	Locker      shared.RecordLocker
	Audit       AuditPort
	Idempotency IdempotencyPort
	Metrics     TransitionRecorder
	Changes     ChangeNotifier
	Logger      *slog.Logger
	Clock       func() time.Time
	NewID       func() string
}

// Service owns the lifecycle of sales records.
type Service struct {
	store     Store
	stock     StockReserver
	customers CustomerDirectory
	locker    shared.RecordLocker
	audit     AuditPort
	idem      IdempotencyPort
	metrics   TransitionRecorder
	changes   ChangeNotifier
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	flights   singleflight.Group
}

const idempotencyScope = "sales:create"

// NewService builds Service.
func NewService(deps ServiceDeps) *Service {
	s := &Service{
		store:     deps.Store,
		stock:     deps.Stock,
		customers: deps.Customers,
		locker:    deps.Locker,
		audit:     deps.Audit,
		idem:      deps.Idempotency,
		metrics:   deps.Metrics,
		changes:   deps.Changes,
		logger:    deps.Logger,
		now:       deps.Clock,
		newID:     deps.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.locker == nil {
		s.locker = shared.NewMemoryLocker(3 * time.Second)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	return s
}

// Create persists a new record with its initial status in one step.
// INVOICED is the default; QUOTATION must be requested explicitly.
func (s *Service) Create(ctx context.Context, in CreateInput) (Record, error) {
	status := in.InitialStatus
	if status == "" {
		status = StatusInvoiced
	}
	if verr := validateCreate(in, status); verr != nil {
		return Record{}, verr
	}
	merged, err := mergeLines(in.Items)
	if err != nil {
		return Record{}, err
	}
	in.Items = merged

	customer, err := s.customers.Lookup(ctx, in.CustomerID)
	if errors.Is(err, ErrUnknownCustomer) {
		return Record{}, newValidationError(ErrUnknownCustomer, "customer_id", ErrUnknownCustomer.Error())
	}
	if err != nil {
		return Record{}, &PersistenceError{Op: "lookup customer", Err: err}
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Claim(ctx, idempotencyScope, in.IdempotencyKey); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Record{}, err
			}
			return Record{}, &PersistenceError{Op: "claim idempotency key", Err: err}
		}
	}

	rec, err := s.create(ctx, in, customer, status)
	if err != nil && in.IdempotencyKey != "" && s.idem != nil {
		if ferr := s.idem.Forget(context.WithoutCancel(ctx), idempotencyScope, in.IdempotencyKey); ferr != nil {
			s.logger.Warn("forget idempotency key", slog.String("key", in.IdempotencyKey), slog.Any("error", ferr))
		}
	}
	return rec, err
}

func (s *Service) create(ctx context.Context, in CreateInput, customer CustomerSnapshot, status Status) (Record, error) {
	invoiceID, err := s.store.NextInvoiceID(ctx)
	if err != nil {
		return Record{}, &PersistenceError{Op: "allocate invoice id", Err: err}
	}
	items := in.Items
	method := in.PaymentMethod
	if method == "" {
		method = PaymentCash
	}
	rec := Record{
		ID:            s.newID(),
		CustomerID:    in.CustomerID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Items:         items,
		TotalAmount:   TotalOf(items),
		PaymentMethod: method,
		Status:        status,
		DateCreated:   s.now().UTC(),
		InvoiceID:     invoiceID,
	}

	reserved := false
	if status == StatusInvoiced {
		if reserved, err = s.reserve(ctx, rec); err != nil {
			return Record{}, err
		}
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		if reserved {
			s.releaseStock(ctx, rec.ID)
		}
		return Record{}, &PersistenceError{Op: "insert sales record", Err: err}
	}

	s.record(ctx, in.Actor, "sales:create", rec.ID, map[string]any{
		"status":     rec.Status,
		"invoice_id": rec.InvoiceID,
		"total":      rec.TotalAmount.StringFixed(2),
	})
	if s.metrics != nil {
		s.metrics.ObserveSalesTransition("", string(rec.Status))
	}
	s.notify(ctx)
	return rec, nil
}

// Transition moves a record toward target. Requests for a status the record
// already reached are no-op successes returning the stored record.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (Record, error) {
	if in.SaleID == "" {
		return Record{}, newValidationError(ErrValidation, "sale_id", "is required")
	}
	key := fmt.Sprintf("%s|%s|%t", in.SaleID, in.Target, in.Confirmed)
	v, err, _ := s.flights.Do(key, func() (any, error) {
		return s.transition(ctx, in)
	})
	if err != nil {
		return Record{}, err
	}
	return v.(Record), nil
}

func (s *Service) transition(ctx context.Context, in TransitionInput) (Record, error) {
	rec, err := s.Get(ctx, in.SaleID)
	if err != nil {
		return Record{}, err
	}
	decision, err := Decide(rec.Status, in.Target)
	if err != nil {
		return Record{}, err
	}
	if decision == DecisionNoOp {
		return rec, nil
	}
	if action, _ := ActionFor(rec.Status, in.Target); action.RequiresConfirmation && !in.Confirmed {
		return Record{}, newValidationError(ErrConfirmationRequired, "confirmed", action.Prompt)
	}

	unlock, err := s.locker.Acquire(ctx, shared.SalesLockKey(in.SaleID))
	if err != nil {
		return Record{}, &PersistenceError{Op: "acquire record lock", Err: err}
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release record lock", slog.String("sale_id", in.SaleID), slog.Any("error", err))
		}
	}()

	rec, err = s.Get(ctx, in.SaleID)
	if err != nil {
		return Record{}, err
	}
	decision, err = Decide(rec.Status, in.Target)
	if err != nil {
		return Record{}, err
	}
	if decision == DecisionNoOp {
		return rec, nil
	}

	reserved := false
	if in.Target == StatusInvoiced {
		if reserved, err = s.reserve(ctx, rec); err != nil {
			return Record{}, err
		}
	}

	updated, err := s.store.SetStatus(ctx, rec.ID, rec.Status, in.Target)
	if err != nil {
		if reserved {
			s.releaseStock(ctx, rec.ID)
		}
		if errors.Is(err, ErrStaleStatus) {
			return s.resolveStale(ctx, in)
		}
		return Record{}, &PersistenceError{Op: "set sales status", Err: err}
	}

	s.record(ctx, in.Actor, "sales:transition", rec.ID, map[string]any{
		"from": rec.Status,
		"to":   updated.Status,
	})
	if s.metrics != nil {
		s.metrics.ObserveSalesTransition(string(rec.Status), string(updated.Status))
	}
	s.logger.Info("sales transition",
		slog.String("sale_id", rec.ID),
		slog.String("from", string(rec.Status)),
		slog.String("to", string(updated.Status)))
	s.notify(ctx)
	return updated, nil
}

// resolveStale handles a compare-and-set miss: a concurrent writer either
// already reached the target or moved the record somewhere incompatible.
func (s *Service) resolveStale(ctx context.Context, in TransitionInput) (Record, error) {
	latest, err := s.Get(ctx, in.SaleID)
	if err != nil {
		return Record{}, err
	}
	if d, _ := Decide(latest.Status, in.Target); d == DecisionNoOp {
		return latest, nil
	}
	return Record{}, &TransitionError{Current: latest.Status, Requested: in.Target}
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, &PersistenceError{Op: "get sales record", Err: err}
	}
	return rec, nil
}

// List returns the whole ledger, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list sales records", Err: err}
	}
	return recs, nil
}

// ListByStatus filters the ledger. An empty status returns everything.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Record, error) {
	recs, err := s.List(ctx)
	if err != nil || status == "" {
		return recs, err
	}
	out := []Record{}
	for _, r := range recs {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) reserve(ctx context.Context, rec Record) (bool, error) {
	created, err := s.stock.Reserve(ctx, rec.ID, rec.Items)
	if err == nil {
		return created, nil
	}
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return false, stockErr
	}
	return false, &PersistenceError{Op: "reserve stock", Err: err}
}

func (s *Service) releaseStock(ctx context.Context, saleID string) {
	if err := s.stock.Release(context.WithoutCancel(ctx), saleID); err != nil {
		s.logger.Error("release reserved stock", slog.String("sale_id", saleID), slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context) {
	if s.changes == nil {
		return
	}
	if err := s.changes.Bump(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("notify ledger change", slog.Any("error", err))
	}
}

// History returns the audit trail of a sale. It is empty when auditing is off.
func (s *Service) History(ctx context.Context, id string) ([]shared.AuditLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []shared.AuditLog{}, nil
	}
	trail, err := s.audit.Trail(ctx, auditEntity, id)
	if err != nil {
		return nil, &PersistenceError{Op: "read audit trail", Err: err}
	}
	return trail, nil
}

func (s *Service) record(ctx context.Context, actor, action, saleID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{Actor: actor, Action: action, Entity: auditEntity, EntityID: saleID, Meta: meta, At: s.now().UTC()}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("sales audit", slog.String("sale_id", saleID), slog.Any("error", err))
	}
}

// mergeLines stages items through a Cart so repeated products become one line.
func mergeLines(items []LineItem) ([]LineItem, error) {
	cart := NewCart()
	for _, it := range items {
		if err := cart.Add(it.ProductID, it.ProductLabel, it.Packaging, it.Quantity, it.UnitPrice); err != nil {
			return nil, err
		}
	}
	return cart.Lines(), nil
}

func validateCreate(in CreateInput, status Status) *ValidationError {
	fields := map[string]string{}
	var cause error
	note := func(err error, field, msg string) {
		if cause == nil {
			cause = err
		}
		if _, ok := fields[field]; !ok {
			fields[field] = msg
		}
	}
	if in.CustomerID == "" {
		note(ErrCustomerRequired, "customer_id", ErrCustomerRequired.Error())
	}
	if len(in.Items) == 0 {
		note(ErrEmptyCart, "items", ErrEmptyCart.Error())
	}
	for i, it := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if it.ProductID == "" {
			note(ErrValidation, prefix+".product_id", "is required")
		}
		if it.Quantity <= 0 {
			note(ErrInvalidQuantity, prefix+".quantity", ErrInvalidQuantity.Error())
		}
		if it.UnitPrice.IsNegative() {
			note(ErrInvalidPrice, prefix+".unit_price", ErrInvalidPrice.Error())
		}
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.IsValid() {
		note(ErrInvalidPayment, "payment_method", ErrInvalidPayment.Error())
	}
	if status != StatusQuotation && status != StatusInvoiced {
		note(ErrValidation, "status", "must be QUOTATION or INVOICED")
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields, Cause: cause}
}
