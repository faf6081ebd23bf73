package mysql

import (
	"context"
	"database/sql"
	"time"

	"auction-board/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

const bidHistorySchema = `
    CREATE TABLE IF NOT EXISTS bid_history (
        id         VARCHAR(36)    NOT NULL PRIMARY KEY,
        item_name  VARCHAR(255)   NOT NULL,
        bidder     VARCHAR(255)   NOT NULL,
        amount     DECIMAL(18, 2) NOT NULL,
        bid_time   DATETIME(6)    NOT NULL,
        created_at DATETIME(6)    NOT NULL,
        INDEX idx_bid_history_item (item_name, bid_time)
    )
`

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, bidHistorySchema)
	return err
}

func (r *MySQLBidRepository) SaveBidEvent(ctx context.Context, event *domain.BidEvent) error {
	query := `
        INSERT INTO bid_history (id, item_name, bidder, amount, bid_time, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.ItemName, event.Bidder,
		event.Amount, event.Timestamp, time.Now())
	return err
}

func (r *MySQLBidRepository) GetBidHistory(ctx context.Context, itemName string) ([]*domain.BidEvent, error) {
	query := `
        SELECT id, item_name, bidder, amount, bid_time
        FROM bid_history
        WHERE item_name = ?
        ORDER BY bid_time ASC
    `

	rows, err := r.db.QueryContext(ctx, query, itemName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.BidEvent
	for rows.Next() {
		event := domain.BidEvent{Type: domain.EventBidAccepted}

		err := rows.Scan(&event.ID, &event.ItemName, &event.Bidder,
			&event.Amount, &event.Timestamp)
		if err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
