package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gastos/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
	}
	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("Type = %v, want sqlite", cfg.Type)
	}
	if cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil {
		t.Fatal("unknown backend type should fail conversion")
	}
	// The error names the accepted types for the operator.
	for _, bt := range GetBackendTypes() {
		if !strings.Contains(err.Error(), bt.String()) {
			t.Errorf("error %q should list backend type %q", err, bt)
		}
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil app config should fail conversion")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sqlite needs path", Config{Type: SQLiteBackend}, true},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"postgrest needs url", Config{Type: PostgRESTBackend, StoreAPIKey: "k"}, true},
		{"postgrest needs key", Config{Type: PostgRESTBackend, StoreURL: "https://x"}, true},
		{"postgrest ok", Config{Type: PostgRESTBackend, StoreURL: "https://x", StoreAPIKey: "k"}, false},
		{"invalid type", Config{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Store == nil {
		t.Fatal("memory backend should return a store")
	}
	if result.Cleanup != nil {
		t.Error("memory backend should have no cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)
	dbPath := filepath.Join(t.TempDir(), "gastos.db")
	result, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: dbPath,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Store == nil {
		t.Fatal("sqlite backend should return a store")
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend should return a cleanup func")
	}
	if err := result.Cleanup(); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

func TestCreateBackendInvalidConfig(t *testing.T) {
	factory := NewFactory(nil)
	if _, err := factory.CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Error("invalid backend type should fail")
	}
}
