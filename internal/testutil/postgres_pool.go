// Package testutil holds helpers shared by PostgreSQL-backed tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IsolatedDSN creates a fresh schema that is dropped when the test ends and
// returns a DSN whose search_path points at it.
// The test is skipped when neither TEST_DATABASE_URL nor DATABASE_URL is set.
func IsolatedDSN(t *testing.T, prefix string) string {
	t.Helper()

	dsn := TestDSN()
	if dsn == "" {
		t.Skip("PostgreSQL test DSN not set: export TEST_DATABASE_URL or DATABASE_URL")
	}

	schema := newSchemaName(prefix)
	ctx := context.Background()

	adminPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres admin pool: %v", err)
	}
	t.Cleanup(adminPool.Close)

	if err := adminPool.Ping(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}

	if _, err := adminPool.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA "%s"`, schema)); err != nil {
		t.Fatalf("create test schema %q: %v", schema, err)
	}
	t.Cleanup(func() {
		_, _ = adminPool.Exec(context.Background(), fmt.Sprintf(`DROP SCHEMA IF EXISTS "%s" CASCADE`, schema))
	})

	schemaDSN, err := dsnWithSearchPath(dsn, schema)
	if err != nil {
		t.Fatalf("build postgres DSN with search_path: %v", err)
	}
	return schemaDSN
}

// OpenPGXPool opens a pgxpool on an isolated schema (see IsolatedDSN).
// Each ddl statement is executed on the new schema before the pool is returned.
func OpenPGXPool(t *testing.T, prefix string, ddl ...string) *pgxpool.Pool {
	t.Helper()

	schemaDSN := IsolatedDSN(t, prefix)
	ctx := context.Background()

	testPool, err := pgxpool.New(ctx, schemaDSN)
	if err != nil {
		t.Fatalf("open postgres test pool: %v", err)
	}
	t.Cleanup(testPool.Close)

	if err := testPool.Ping(ctx); err != nil {
		t.Fatalf("ping postgres test pool: %v", err)
	}

	for _, stmt := range ddl {
		if _, err := testPool.Exec(ctx, stmt); err != nil {
			t.Fatalf("apply test schema: %v", err)
		}
	}

	return testPool
}
