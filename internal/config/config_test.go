package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	storeConfig "github.com/iurnickita/bizledger/internal/store/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	require.Equal(t, defaultServerAddr, cfg.Handler.ServerAddr)
	require.Equal(t, defaultStoreTimeout, cfg.Store.Timeout)
	require.Equal(t, "info", cfg.Logger.LogLevel)
	require.Equal(t, 4, cfg.Service.RecalcWorkers)
	require.Empty(t, cfg.Handler.TokenSecret)
}

func TestLoadPrecedence(t *testing.T) {
	yamlPath := writeFile(t, "ledger.yaml", `
handler:
  run_address: ":9000"
  cors_origins: ["http://localhost:5173"]
store:
  kind: redis
  redis_addr: "cache:6379"
  timeout: 2s
logger:
  log_level: warn
service:
  recalc_workers: 2
`)
	envPath := writeFile(t, ".env", "LOG_LEVEL=debug\nREDIS_DB=3\nTOKEN_SECRET=from-dotenv\n")

	t.Setenv("CONFIG", yamlPath)
	t.Setenv("TOKEN_SECRET", "from-env")
	t.Setenv("LUHN_INVOICE_NUMBERS", "true")

	cfg, err := Load([]string{"-w", "8"}, envPath)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Handler.ServerAddr)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Handler.CORSOrigins)
	require.Equal(t, storeConfig.KindRedis, cfg.Store.Kind)
	require.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	require.Equal(t, 2*time.Second, cfg.Store.Timeout)
	require.Equal(t, 3, cfg.Store.RedisDB)
	require.Equal(t, "debug", cfg.Logger.LogLevel)
	require.Equal(t, "from-env", cfg.Handler.TokenSecret)
	require.True(t, cfg.Service.LuhnInvoiceNumbers)
	require.Equal(t, 8, cfg.Service.RecalcWorkers)
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":7000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load([]string{"-a", ":8081", "-d", "postgres://ledger@db/ledger", "-s", "postgres", "-t", "1s", "-luhn"}, "")
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.Handler.ServerAddr)
	require.Equal(t, "postgres://ledger@db/ledger", cfg.Store.DBDsn)
	require.Equal(t, storeConfig.KindPostgres, cfg.Store.Kind)
	require.Equal(t, time.Second, cfg.Store.Timeout)
	require.True(t, cfg.Service.LuhnInvoiceNumbers)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Handler.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}, "")
	require.Error(t, err)

	_, err = Load([]string{"-c", writeFile(t, "bad.yaml", "store: [")}, "")
	require.Error(t, err)

	t.Setenv("STORE_TIMEOUT", "soon")
	_, err = Load(nil, "")
	require.ErrorContains(t, err, "STORE_TIMEOUT")
}
