package quotestore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfq-workers/internal/scoring"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestLoadRFQ(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rfqItemsQuery)).
		WithArgs("rfq-1").
		WillReturnRows(sqlmock.NewRows([]string{"sku", "quantity"}).
			AddRow("BOLT-M8", 500.0).
			AddRow("NUT-M8", 500.0))

	rfq, err := store.LoadRFQ(context.Background(), "rfq-1")
	require.NoError(t, err)

	assert.Equal(t, "rfq-1", rfq.ID)
	require.Len(t, rfq.Items, 2)
	assert.Equal(t, "BOLT-M8", rfq.Items[0].SKU)
	assert.Equal(t, 500.0, rfq.Items[1].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRFQ_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rfqItemsQuery)).
		WithArgs("rfq-missing").
		WillReturnRows(sqlmock.NewRows([]string{"sku", "quantity"}))

	_, err := store.LoadRFQ(context.Background(), "rfq-missing")
	assert.ErrorIs(t, err, ErrRFQNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRFQ_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(rfqItemsQuery)).
		WithArgs("rfq-1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.LoadRFQ(context.Background(), "rfq-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRFQNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestLoadQuotes_GroupsLinesInOrder(t *testing.T) {
	store, mock := newMockStore(t)

	cols := []string{"id", "supplier_name", "sku", "quantity", "unit_price", "currency", "lead_time_days"}
	mock.ExpectQuery(regexp.QuoteMeta(quotesQuery)).
		WithArgs("rfq-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("q-2", "VendorY", "BOLT-M8", 500.0, 0.12, "EUR", 10.0).
			AddRow("q-2", "VendorY", "NUT-M8", 500.0, 0.05, "EUR", nil).
			AddRow("q-1", "VendorX", "BOLT-M8", 500.0, 0.10, "USD", 14.0))

	quotes, err := store.LoadQuotes(context.Background(), "rfq-1")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "q-2", quotes[0].ID)
	assert.Equal(t, "VendorY", quotes[0].SupplierName)
	require.Len(t, quotes[0].Items, 2)
	require.NotNil(t, quotes[0].Items[0].LeadTimeDays)
	assert.Equal(t, 10.0, *quotes[0].Items[0].LeadTimeDays)
	assert.Nil(t, quotes[0].Items[1].LeadTimeDays)

	assert.Equal(t, "VendorX", quotes[1].SupplierName)
	assert.Equal(t, "USD", quotes[1].Items[0].Currency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadQuotes_KeepsQuoteWithoutLines(t *testing.T) {
	store, mock := newMockStore(t)

	cols := []string{"id", "supplier_name", "sku", "quantity", "unit_price", "currency", "lead_time_days"}
	mock.ExpectQuery(regexp.QuoteMeta(quotesQuery)).
		WithArgs("rfq-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("q-1", "VendorX", "BOLT-M8", 500.0, 0.10, "USD", 14.0).
			AddRow("q-2", "VendorEmpty", nil, nil, nil, nil, nil))

	quotes, err := store.LoadQuotes(context.Background(), "rfq-1")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "q-2", quotes[1].ID)
	assert.Equal(t, "VendorEmpty", quotes[1].SupplierName)
	assert.Empty(t, quotes[1].Items)
	assert.NoError(t, mock.ExpectationsWereMet())

	rfq := &scoring.RFQ{ID: "rfq-1", Items: []scoring.RFQItem{{SKU: "BOLT-M8", Quantity: 500}}}
	raw, err := scoring.RawScores(rfq, quotes, nil, scoring.Config{})
	require.NoError(t, err)
	assert.InDelta(t, 50, raw[0].Price, 1e-9)
	assert.Equal(t, 500*scoring.MissingItemPenalty, raw[1].Price)
	assert.Equal(t, scoring.UnknownLeadTimeDays, raw[1].LeadTime)

	result, err := scoring.ComputeScores(rfq, quotes, nil, scoring.Config{})
	require.NoError(t, err)
	assert.Equal(t, "VendorX", result.Winner.Vendor)
	assert.Equal(t, 0.0, result.Vendors[1].Components.Price)
}

func TestLoadQuotes_NoQuotes(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(quotesQuery)).
		WithArgs("rfq-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "supplier_name", "sku", "quantity", "unit_price", "currency", "lead_time_days"}))

	quotes, err := store.LoadQuotes(context.Background(), "rfq-1")
	require.NoError(t, err)
	assert.NotNil(t, quotes)
	assert.Empty(t, quotes)
}
