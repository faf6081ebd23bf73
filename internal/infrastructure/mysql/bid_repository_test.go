package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"auction-board/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func newMockRepository(t *testing.T) (*MySQLBidRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLBidRepository(db), mock
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bid_history")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	check.NoError(t, repo.EnsureSchema(context.Background()))
	check.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBidEvent(t *testing.T) {
	repo, mock := newMockRepository(t)
	event := &domain.BidEvent{
		ID:        "bid-1",
		Type:      domain.EventBidAccepted,
		ItemName:  "Vintage Rolex Submariner",
		Bidder:    "Alice",
		Amount:    decimal.NewFromInt(1050),
		Timestamp: time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bid_history (id, item_name, bidder, amount, bid_time, created_at)")).
		WithArgs("bid-1", "Vintage Rolex Submariner", "Alice", sqlmock.AnyArg(), event.Timestamp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	check.NoError(t, repo.SaveBidEvent(context.Background(), event))
	check.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBidEvent_Error(t *testing.T) {
	repo, mock := newMockRepository(t)
	errDown := errors.New("connection refused")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bid_history")).WillReturnError(errDown)

	err := repo.SaveBidEvent(context.Background(), &domain.BidEvent{ID: "bid-1", ItemName: "Lot"})
	check.True(t, errors.Is(err, errDown))
}

func TestGetBidHistory(t *testing.T) {
	repo, mock := newMockRepository(t)
	first := time.Date(2024, 3, 1, 12, 1, 0, 0, time.UTC)
	second := first.Add(30 * time.Second)

	rows := sqlmock.NewRows([]string{"id", "item_name", "bidder", "amount", "bid_time"}).
		AddRow("bid-1", "Ming Dynasty Vase", "Alice", "2600.00", first).
		AddRow("bid-2", "Ming Dynasty Vase", "Bob", "2750.00", second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item_name, bidder, amount, bid_time")).
		WithArgs("Ming Dynasty Vase").
		WillReturnRows(rows)

	events, err := repo.GetBidHistory(context.Background(), "Ming Dynasty Vase")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(events))

	check.Equal(t, "bid-1", events[0].ID)
	check.Equal(t, domain.EventBidAccepted, events[0].Type)
	check.Equal(t, "Alice", events[0].Bidder)
	check.Equal(t, "2600", events[0].Amount.String())
	check.True(t, events[0].Timestamp.Equal(first))
	check.Equal(t, "Bob", events[1].Bidder)
	check.True(t, events[1].Timestamp.Equal(second))
	check.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBidHistory_Empty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item_name, bidder, amount, bid_time")).
		WithArgs("Lot").
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_name", "bidder", "amount", "bid_time"}))

	events, err := repo.GetBidHistory(context.Background(), "Lot")
	check.NoError(t, err)
	check.Equal(t, 0, len(events))
}
