package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/minhlong-dev/industro-backend/pkg/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.DBConfig{
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Driver: "sqlite",
	}

	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.DBConfig{}, nil)
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestWithTxCommit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if err := client.DB().Exec("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO things (name) VALUES (?)", "bolt").Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	var count int64
	if err := client.DB().Raw("SELECT COUNT(*) FROM things").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestWithTxRollbackOnError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if err := client.DB().Exec("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO things (name) VALUES (?)", "bolt").Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	if err := client.DB().Raw("SELECT COUNT(*) FROM things").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows after rollback, got %d", count)
	}
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if err := client.DB().Exec("CREATE TABLE codes (code TEXT PRIMARY KEY)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := client.DB().Exec("INSERT INTO codes (code) VALUES ('A')").Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := client.DB().Exec("INSERT INTO codes (code) VALUES ('A')").Error
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
