package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS order_snapshots (
	id           CHAR(36)       NOT NULL PRIMARY KEY,
	status       VARCHAR(16)    NOT NULL,
	total_amount DECIMAL(20, 2) NOT NULL,
	items        JSON           NOT NULL,
	created_at   DATETIME(3)    NOT NULL,
	updated_at   DATETIME(3)    NOT NULL
)`

type snapshotItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// MySQLAdapter archives order snapshots. It is write-only; the service never
// reads orders back from it. Rows only leave PENDING, so a late pending
// snapshot never overwrites a terminal one.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("create order_snapshots: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) SaveSnapshot(ctx context.Context, order domain.Order) error {
	items := make([]snapshotItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, snapshotItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  domain.FormatMoney(item.Subtotal),
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal snapshot items: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO order_snapshots (id, status, total_amount, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			updated_at = IF(status = 'PENDING', VALUES(updated_at), updated_at),
			status = IF(status = 'PENDING', VALUES(status), status)`,
		order.ID, string(order.Status), domain.FormatMoney(order.TotalAmount), itemsJSON,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert order snapshot: %w", err)
	}
	return nil
}
