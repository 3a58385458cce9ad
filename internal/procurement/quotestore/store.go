// Package quotestore loads requests for quotation and supplier quotes from PostgreSQL.
package quotestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rfq-workers/internal/scoring"
)

var ErrRFQNotFound = errors.New("rfq not found")

const rfqItemsQuery = `
	SELECT sku, quantity
	FROM rfq_items
	WHERE rfq_id = $1
	ORDER BY position`

// quotesQuery returns one row per quote line, and a single row of NULL line
// columns for a quote without lines. Ordering by submission keeps the quote
// order stable between runs, which the ranking uses to break ties.
const quotesQuery = `
	SELECT q.id, q.supplier_name, qi.sku, qi.quantity, qi.unit_price, qi.currency, qi.lead_time_days
	FROM quotes q
	LEFT JOIN quote_items qi ON qi.quote_id = q.id
	WHERE q.rfq_id = $1
	ORDER BY q.submitted_at, q.id, qi.position`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadRFQ returns the basis lines of an RFQ in their spreadsheet order.
func (s *Store) LoadRFQ(ctx context.Context, rfqID string) (*scoring.RFQ, error) {
	rows, err := s.db.QueryContext(ctx, rfqItemsQuery, rfqID)
	if err != nil {
		return nil, fmt.Errorf("query rfq items: %w", err)
	}
	defer rows.Close()

	rfq := &scoring.RFQ{ID: rfqID}
	for rows.Next() {
		var item scoring.RFQItem
		if err := rows.Scan(&item.SKU, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan rfq item: %w", err)
		}
		rfq.Items = append(rfq.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rfq items: %w", err)
	}

	if len(rfq.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRFQNotFound, rfqID)
	}
	return rfq, nil
}

// LoadQuotes returns every quote submitted against an RFQ. A quote without
// lines comes back with no items so scoring charges it for every RFQ line.
func (s *Store) LoadQuotes(ctx context.Context, rfqID string) ([]scoring.Quote, error) {
	rows, err := s.db.QueryContext(ctx, quotesQuery, rfqID)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []scoring.Quote{}
	index := map[string]int{}

	for rows.Next() {
		var (
			quoteID, supplier string
			sku, currency     sql.NullString
			quantity, price   sql.NullFloat64
			leadTime          sql.NullFloat64
		)
		if err := rows.Scan(&quoteID, &supplier, &sku, &quantity, &price, &currency, &leadTime); err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}

		pos, ok := index[quoteID]
		if !ok {
			pos = len(quotes)
			index[quoteID] = pos
			quotes = append(quotes, scoring.Quote{ID: quoteID, SupplierName: supplier})
		}
		if !sku.Valid {
			continue
		}

		item := scoring.QuoteItem{
			SKU:       sku.String,
			Quantity:  quantity.Float64,
			UnitPrice: price.Float64,
			Currency:  currency.String,
		}
		if leadTime.Valid {
			v := leadTime.Float64
			item.LeadTimeDays = &v
		}
		quotes[pos].Items = append(quotes[pos].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}
