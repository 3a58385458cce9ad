package scorevendorquotes

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"rfq-workers/internal/common/config"
	"rfq-workers/internal/common/errors"
	"rfq-workers/internal/common/logger"
	"rfq-workers/internal/common/metrics"
	"rfq-workers/internal/common/validation"
	"rfq-workers/internal/procurement/quotestore"
	"rfq-workers/internal/scoring"
)

const TaskType = "score-vendor-quotes"

type Handler struct {
	config       *Config
	quotes       QuoteSource
	histories    HistorySource
	rates        RateSource
	recorder     Recorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Quotes       QuoteSource
	Histories    HistorySource
	Rates        RateSource
	Recorder     Recorder
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.CustomConfig
	if cfg == nil {
		cfg = NewConfigFromAppConfig(opts.AppConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		quotes:       opts.Quotes,
		histories:    opts.Histories,
		rates:        opts.Rates,
		recorder:     opts.Recorder,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := ParseInput([]byte(job.GetVariables()))
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			if cerr := h.completeJob(ctx, client, job, output); cerr != nil {
				// The broker redelivers the job once its activation times out.
				metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeExternalService)).Inc()
				h.record(ctx, startTime, "failed")
				return
			}
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
			h.record(ctx, startTime, "success")
			return
		}
	}

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.record(ctx, startTime, "failed")
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// ParseInput validates raw job variables against the input schema and decodes them.
func ParseInput(raw []byte) (*Input, error) {
	if res := inputSchema.Validate(raw); !res.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(validation.GetErrorMessages(res), "; "))
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

// Execute gathers the RFQ documents, supplier histories and currency rates for
// one request and ranks the quotes.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	rfq, err := h.resolveRFQ(ctx, input)
	if err != nil {
		return nil, err
	}
	quotes, err := h.resolveQuotes(ctx, input)
	if err != nil {
		return nil, err
	}
	histories, err := h.resolveHistories(ctx, input, quotes)
	if err != nil {
		return nil, err
	}

	scoringCfg := scoring.Config{
		Weights:       h.config.Weights,
		CurrencyRates: h.resolveRates(ctx, input),
		Tunables:      &h.config.Tunables,
	}
	if input.Config != nil {
		scoringCfg.Weights = scoringCfg.Weights.Merge(input.Config.Weights)
	}

	result, err := scoring.ComputeScores(rfq, quotes, histories, scoringCfg)
	if err != nil {
		if stderrors.Is(err, scoring.ErrInvalidInput) {
			return nil, errors.NewInvalidInputError(err.Error())
		}
		return nil, errors.NewScoringFailedError(err)
	}

	missing := 0
	for _, q := range quotes {
		missing += scoring.MissingItems(rfq, q)
	}
	metrics.MissingQuoteLines.Add(float64(missing))
	metrics.VendorsPerRequest.Observe(float64(len(result.Vendors)))
	if h.recorder != nil {
		h.recorder.RecordScoringRun(ctx, len(result.Vendors), result.Winner != nil)
	}

	output := &Output{
		RFQID:        rfqID(input, rfq),
		Weights:      result.Weights,
		Vendors:      result.Vendors,
		Winner:       result.Winner,
		VendorCount:  len(result.Vendors),
		ScoringRunID: uuid.NewString(),
	}
	if result.Winner != nil {
		output.WinningVendor = result.Winner.Vendor
	}

	h.logger.Info("quotes scored", map[string]interface{}{
		"rfqId":         output.RFQID,
		"scoringRunId":  output.ScoringRunID,
		"vendorCount":   output.VendorCount,
		"winningVendor": output.WinningVendor,
		"missingLines":  missing,
	})

	return output, nil
}

func rfqID(input *Input, rfq *scoring.RFQ) string {
	if input.RFQID != "" {
		return input.RFQID
	}
	return rfq.ID
}

func (h *Handler) resolveRFQ(ctx context.Context, input *Input) (*scoring.RFQ, error) {
	if input.RFQ != nil {
		return input.RFQ, nil
	}
	if h.quotes == nil {
		return nil, errors.NewBusinessRuleError("RFQ store is not configured", "rfqId: "+input.RFQID)
	}

	rfq, err := h.quotes.LoadRFQ(ctx, input.RFQID)
	if err != nil {
		return nil, h.mapLoadError(ctx, input.RFQID, err)
	}
	return rfq, nil
}

func (h *Handler) resolveQuotes(ctx context.Context, input *Input) ([]scoring.Quote, error) {
	if input.Quotes != nil {
		return input.Quotes, nil
	}
	if h.quotes == nil {
		return nil, errors.NewBusinessRuleError("RFQ store is not configured", "rfqId: "+input.RFQID)
	}

	quotes, err := h.quotes.LoadQuotes(ctx, input.RFQID)
	if err != nil {
		return nil, h.mapLoadError(ctx, input.RFQID, err)
	}
	return quotes, nil
}

func (h *Handler) mapLoadError(ctx context.Context, rfqID string, err error) error {
	switch {
	case stderrors.Is(err, quotestore.ErrRFQNotFound):
		return errors.NewRFQNotFoundError(rfqID)
	case stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		return errors.NewQuoteLoadTimeoutError(rfqID)
	default:
		return errors.NewQuoteLoadFailedError(rfqID, err)
	}
}

// resolveHistories merges provider history with inline entries, inline winning per supplier.
func (h *Handler) resolveHistories(ctx context.Context, input *Input, quotes []scoring.Quote) (map[string]scoring.VendorHistory, error) {
	histories := make(map[string]scoring.VendorHistory, len(quotes))

	if h.histories != nil && len(quotes) > 0 {
		names := make([]string, 0, len(quotes))
		for _, q := range quotes {
			if _, inline := input.VendorHistories[q.SupplierName]; !inline && q.SupplierName != "" {
				names = append(names, q.SupplierName)
			}
		}
		if len(names) > 0 {
			found, err := h.histories.Lookup(ctx, names)
			if err != nil {
				return nil, errors.NewHistoryLookupFailedError(err)
			}
			for name, vh := range found {
				histories[name] = vh
			}
		}
	}

	for name, vh := range input.VendorHistories {
		histories[name] = vh
	}
	return histories, nil
}

func (h *Handler) resolveRates(ctx context.Context, input *Input) map[string]float64 {
	rates := map[string]float64{}
	if h.rates != nil {
		rates = h.rates.Rates(ctx)
	}
	if input.Config != nil {
		for code, r := range input.Config.CurrencyRates {
			rates[code] = r
		}
	}
	return rates
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	if h.recorder == nil {
		return
	}
	h.recorder.RecordJob(ctx, TaskType, status, time.Since(start))
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return fmt.Errorf("create complete command for job %d: %w", job.GetKey(), err)
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return fmt.Errorf("complete job %d: %w", job.GetKey(), err)
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":        job.GetKey(),
		"winningVendor": output.WinningVendor,
		"vendorCount":   output.VendorCount,
	})
	return nil
}
