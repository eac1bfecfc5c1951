package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchenos/pkg/recipe"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	fields, err := cfg.Fields()
	require.NoError(t, err)
	assert.Equal(t, recipe.DefaultFields, fields)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "kitchenos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  shutdown_timeout: 2s
api:
  default_tenant: 0
store:
  seed: false
  search_fields: [title]
log:
  level: debug
`), 0o600))
	t.Setenv("KITCHENOS_LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0, cfg.API.DefaultTenant)
	assert.False(t, cfg.Store.Seed)
	assert.Equal(t, []string{"title"}, cfg.Store.SearchFields)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	cfg := Default()
	env := map[string]string{"KITCHENOS_DEFAULT_TENANT": "abc"}
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":      func(c *Config) { c.Server.Addr = "" },
		"zero timeout":    func(c *Config) { c.Server.ShutdownTimeout = 0 },
		"negative tenant": func(c *Config) { c.API.DefaultTenant = -1 },
		"bad level":       func(c *Config) { c.Log.Level = "loud" },
		"bad field":       func(c *Config) { c.Store.SearchFields = []string{"calories"} },
		"bad probability": func(c *Config) { c.Tracing.Probability = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
