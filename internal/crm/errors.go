package crm

import (
	"net/http"
	"sort"
	"strings"

	"github.com/mycoledger/mycoledger/internal/platform/httpx"
)

// ValidationError reports invalid customer fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		keys = append(keys, k+" "+v)
	}
	sort.Strings(keys)
	return "crm: " + strings.Join(keys, "; ")
}

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

func (e *ValidationError) ProblemStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) ProblemTitle() string { return "Validation Failed" }
func (e *ValidationError) ProblemExtensions() map[string]any {
	return map[string]any{"fields": e.Fields}
}
