package sales

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mycoledger/mycoledger/internal/inventory"
	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

var (
	ErrValidation           = errors.New("sales: validation failed")
	ErrInsufficientStock    = errors.New("sales: insufficient stock")
	ErrInvalidTransition    = errors.New("sales: invalid status transition")
	ErrPersistence          = errors.New("sales: persistence failure")
	ErrConfirmationRequired = errors.New("transition requires confirmation")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCustomerRequired     = errors.New("customer is required")
	ErrUnknownCustomer      = errors.New("unknown customer")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPrice         = errors.New("unit price must not be negative")
	ErrInvalidPayment       = errors.New("unsupported payment method")
	// ErrStaleStatus is returned by a Store when the stored status no longer
	// matches the expected one.
	ErrStaleStatus = errors.New("sales: status changed concurrently")
	ErrNotFound    = fmt.Errorf("sales record %w", httpx.ErrNotFound)
)

// ValidationError reports bad input. Nothing was mutated.
type ValidationError struct {
	Fields map[string]string
	Cause  error
}

func newValidationError(cause error, field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}, Cause: cause}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "sales: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

func (e *ValidationError) ProblemStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) ProblemTitle() string { return "Validation Failed" }
func (e *ValidationError) ProblemExtensions() map[string]any {
	return map[string]any{"fields": e.Fields}
}

// InsufficientStockError lists every line that could not be reserved.
type InsufficientStockError struct {
	Shortfalls []inventory.Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s requested %d available %d", s.Label, s.Requested, s.Available))
	}
	return "sales: insufficient stock: " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

func (e *InsufficientStockError) ProblemStatus() int  { return http.StatusUnprocessableEntity }
func (e *InsufficientStockError) ProblemTitle() string { return "Insufficient Stock" }
func (e *InsufficientStockError) ProblemExtensions() map[string]any {
	type shortfall struct {
		ProductID string `json:"product_id"`
		Label     string `json:"label"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
		Missing   int    `json:"missing"`
	}
	out := make([]shortfall, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		out = append(out, shortfall{s.ProductID, s.Label, s.Requested, s.Available, s.Missing()})
	}
	return map[string]any{"shortfalls": out}
}

// TransitionError rejects a status change that is not part of the lifecycle.
type TransitionError struct {
	Current   Status
	Requested Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("sales: cannot move from %s to %s", e.Current, e.Requested)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func (e *TransitionError) ProblemStatus() int  { return http.StatusConflict }
func (e *TransitionError) ProblemTitle() string { return "Invalid Transition" }
func (e *TransitionError) ProblemExtensions() map[string]any {
	return map[string]any{"current": e.Current, "requested": e.Requested}
}

// PersistenceError wraps a collaborator failure. It is never retried here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("sales: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

func (e *PersistenceError) ProblemStatus() int  { return http.StatusServiceUnavailable }
func (e *PersistenceError) ProblemTitle() string { return "Persistence Failure" }
