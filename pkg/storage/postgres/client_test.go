package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"tradelog/pkg/storage/postgres"
)

// testDSN returns the DSN of a disposable database or skips the test.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TRADELOG_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRADELOG_TEST_POSTGRES_DSN not set")
	}
	return dsn
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	client, err := postgres.NewClient("host=127.0.0.1 port=1 user=fail password=fail dbname=fail sslmode=disable connect_timeout=1")
	if err == nil {
		defer client.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if client.IsHealthy(ctx) {
			t.Fatal("expected unhealthy client for unreachable DSN")
		}
	}
}

// go test -v --run ^TestPostgresClientMigrates$
func TestPostgresClientMigrates(t *testing.T) {
	client, err := postgres.NewClient(testDSN(t))
	if err != nil {
		t.Fatalf("failed to create Postgres client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !client.IsHealthy(ctx) {
		t.Fatal("expected healthy DB connection")
	}

	if err := client.AutoMigrateTradeRecord(); err != nil {
		t.Fatalf("auto migration failed: %v", err)
	}
}
