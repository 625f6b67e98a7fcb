package testsupport

import (
	"path/filepath"
	"testing"

	"reliquary/internal/config"
	"reliquary/internal/vault"
)

// NewConfig produces a config rooted in unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.VaultDir = filepath.Join(base, "vault")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return cfg
}

// MustOpenStore opens a vault.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *vault.Store {
	t.Helper()

	store, err := vault.Open(cfg)
	if err != nil {
		t.Fatalf("vault.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
