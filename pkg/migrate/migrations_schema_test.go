package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testMigrationsDir = "migrations"

func TestValidateDirPasses(t *testing.T) {
	t.Parallel()

	if err := ValidateDir(testMigrationsDir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestInitSchemaCreatesCoreTables(t *testing.T) {
	t.Parallel()

	entries, err := os.ReadDir(testMigrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var initSQL string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_init_schema.sql") {
			b, err := os.ReadFile(filepath.Join(testMigrationsDir, e.Name()))
			if err != nil {
				t.Fatalf("read init migration: %v", err)
			}
			initSQL = string(b)
		}
	}
	if initSQL == "" {
		t.Fatal("init schema migration not found")
	}

	for _, table := range []string{
		"users", "brands", "categories", "products",
		"product_variants", "carts", "cart_items", "orders", "order_items",
	} {
		if !strings.Contains(initSQL, "CREATE TABLE "+table+" (") {
			t.Errorf("init migration missing table %q", table)
		}
	}

	if !strings.Contains(initSQL, "CONSTRAINT idx_cart_variant UNIQUE (cart_id, variant_id)") {
		t.Error("cart_items missing the one-line-per-variant constraint")
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "001_bad.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for short version prefix")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Promo Codes!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_promo_codes.sql") {
		t.Fatalf("unexpected filename %q", path)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("ValidateDir on created migration: %v", err)
	}
}
