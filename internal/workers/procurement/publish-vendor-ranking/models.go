package publishvendorranking

import (
	"time"

	"rfq-workers/internal/scoring"
)

// Input is a ranking as emitted by score-vendor-quotes.
type Input struct {
	RFQID        string                `json:"rfqId"`
	ScoringRunID string                `json:"scoringRunId,omitempty"`
	Weights      scoring.Weights       `json:"weights"`
	Vendors      []scoring.FinalResult `json:"vendors"`
	Winner       *scoring.FinalResult  `json:"winner,omitempty"`
}

// RankingDocument is what the comparison UI and exports read back.
type RankingDocument struct {
	RFQID         string                `json:"rfqId"`
	ScoringRunID  string                `json:"scoringRunId,omitempty"`
	Weights       scoring.Weights       `json:"weights"`
	Vendors       []scoring.FinalResult `json:"vendors"`
	Winner        *scoring.FinalResult  `json:"winner,omitempty"`
	WinningVendor string                `json:"winningVendor"`
	PublishedAt   time.Time             `json:"publishedAt"`
}

type Output struct {
	RankingDocumentID string `json:"rankingDocumentId"`
	RankingIndex      string `json:"rankingIndex"`
}
