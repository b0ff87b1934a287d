package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycoledger/mycoledger/internal/documents"
	"github.com/mycoledger/mycoledger/internal/observability"
)

func TestLoadConfigReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("COMPANY_NAME=Kampung Fungi\nCOMPANY_ADDRESS=Lot 5 | Shah Alam\nSALES_LOCK_WAIT=750ms\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		for _, key := range []string{"COMPANY_NAME", "COMPANY_ADDRESS", "SALES_LOCK_WAIT"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.SalesLockWait)
	assert.Equal(t, 10*time.Second, cfg.SalesLockTTL)
	assert.Equal(t, "15.00", cfg.UnitPrice().StringFixed(2))

	company := cfg.Company()
	assert.Equal(t, "Kampung Fungi", company.Name)
	assert.Equal(t, []string{"Lot 5", "Shah Alam"}, company.Address)
}

func TestLoadConfigWithoutEnvFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DEFAULT_UNIT_PRICE", "abc")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DEFAULT_UNIT_PRICE", "12.5")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, documents.DefaultCompany, cfg.Company())
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json", AppEnv: "production"}, &buf).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"service":"mycoledger"`)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := NewRouter(RouterParams{Config: &Config{}, Metrics: observability.NewMetrics()})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "mycoledger_http_requests_total")
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
