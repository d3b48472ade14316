package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/orders?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestSaveSnapshot_Lifecycle(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.EnsureSchema(ctx))

	order := newTestOrder()
	defer db.ExecContext(ctx, `DELETE FROM order_snapshots WHERE id = ?`, order.ID)

	pending := order.Clone()
	require.NoError(t, adapter.SaveSnapshot(ctx, pending))

	require.NoError(t, order.Apply(domain.ActionConfirm, time.Now()))
	require.NoError(t, adapter.SaveSnapshot(ctx, order))

	// a late pending snapshot must not revert the terminal status
	require.NoError(t, adapter.SaveSnapshot(ctx, pending))

	var status, total string
	err := db.QueryRowContext(ctx,
		`SELECT status, total_amount FROM order_snapshots WHERE id = ?`, order.ID,
	).Scan(&status, &total)
	require.NoError(t, err)

	assert.Equal(t, "CONFIRMED", status)
	assert.Equal(t, "19.98", total)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	require.NoError(t, adapter.EnsureSchema(ctx))
	require.NoError(t, adapter.EnsureSchema(ctx))
}
