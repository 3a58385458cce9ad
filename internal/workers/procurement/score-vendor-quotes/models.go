package scorevendorquotes

import (
	"context"
	"time"

	"rfq-workers/internal/scoring"
)

// Input is the job payload. Inline documents take precedence over the store;
// RFQID is used to load whatever is not supplied inline.
type Input struct {
	RFQID           string                           `json:"rfqId,omitempty"`
	RFQ             *scoring.RFQ                     `json:"rfq,omitempty"`
	Quotes          []scoring.Quote                  `json:"quotes,omitempty"`
	VendorHistories map[string]scoring.VendorHistory `json:"vendorHistories,omitempty"`
	Config          *JobConfig                       `json:"config,omitempty"`
}

// JobConfig carries per-request scoring overrides.
type JobConfig struct {
	Weights       scoring.WeightOverrides `json:"weights"`
	CurrencyRates map[string]float64      `json:"currencyRates,omitempty"`
}

type Output struct {
	RFQID         string                `json:"rfqId,omitempty"`
	Weights       scoring.Weights       `json:"weights"`
	Vendors       []scoring.FinalResult `json:"vendors"`
	Winner        *scoring.FinalResult  `json:"winner,omitempty"`
	WinningVendor string                `json:"winningVendor"`
	VendorCount   int                   `json:"vendorCount"`
	ScoringRunID  string                `json:"scoringRunId"`
}

// QuoteSource loads RFQ documents by id.
type QuoteSource interface {
	LoadRFQ(ctx context.Context, rfqID string) (*scoring.RFQ, error)
	LoadQuotes(ctx context.Context, rfqID string) ([]scoring.Quote, error)
}

// HistorySource resolves past supplier performance.
type HistorySource interface {
	Lookup(ctx context.Context, supplierNames []string) (map[string]scoring.VendorHistory, error)
}

// RateSource supplies the currency conversion table.
type RateSource interface {
	Rates(ctx context.Context) map[string]float64
}

// Recorder receives job outcome and scoring run metrics.
type Recorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
	RecordScoringRun(ctx context.Context, vendorCount int, hasWinner bool)
}
