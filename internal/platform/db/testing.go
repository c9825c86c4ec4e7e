//go:build integration

package db

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/ferdiebergado/gopherkit/env"
	"github.com/ferdiebergado/storyboard/internal/config"
)

// paths are relative to a package two levels below the module root
const (
	testEnvFile    = "../../.env.testing"
	testConfigFile = "../../config.json"
	testSchemaFile = "../../db/schema.sql"
)

var (
	schemaOnce sync.Once
	errSchema  error
)

// Setup connects to the test database, makes sure the schema exists and
// opens a transaction that is rolled back when the test ends. Tests seed
// and query through the returned transaction.
func Setup(t *testing.T) (*sql.DB, *sql.Tx) {
	t.Helper()

	if err := env.Load(testEnvFile); err != nil {
		t.Fatalf("load %s: %v", testEnvFile, err)
	}

	cfg, err := config.Load(testConfigFile)
	if err != nil {
		t.Fatalf("load %s: %v", testConfigFile, err)
	}

	conn, err := NewPostgresDB(t.Context(), cfg.DB)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	schemaOnce.Do(func() { errSchema = applySchema(conn) })
	if errSchema != nil {
		t.Fatalf("apply %s: %v", testSchemaFile, errSchema)
	}

	tx, err := conn.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin test transaction: %v", err)
	}
	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Logf("rollback test transaction: %v", err)
		}
	})

	return conn, tx
}

// applySchema runs the schema file as one simple-protocol batch. Every
// statement in it is idempotent.
func applySchema(conn *sql.DB) error {
	ddl, err := os.ReadFile(testSchemaFile)
	if err != nil {
		return err
	}
	_, err = conn.Exec(string(ddl))
	return err
}
