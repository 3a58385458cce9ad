package publishvendorranking

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"rfq-workers/internal/common/errors"
	"rfq-workers/internal/common/logger"
	"rfq-workers/internal/common/metrics"
	"rfq-workers/internal/common/validation"
	"rfq-workers/internal/scoring"
)

const TaskType = "publish-vendor-ranking"

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	recorder     Recorder
	now          func() time.Time
}

// Recorder receives job outcome metrics.
type Recorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

func NewHandler(cfg *Config, client *elasticsearch.Client, log logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if client == nil {
		return nil, fmt.Errorf("elasticsearch client is required for %s", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       cfg,
		client:       client,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}, nil
}

// WithRecorder sets the recorder used for job outcome metrics.
func (h *Handler) WithRecorder(r Recorder) *Handler {
	h.recorder = r
	return h
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	if h.recorder != nil {
		h.recorder.RecordJob(ctx, TaskType, status, time.Since(start))
	}
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

	input, err := parseInput([]byte(job.GetVariables()))
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

func parseInput(raw []byte) (*Input, error) {
	if res := inputSchema.Validate(raw); !res.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(validation.GetErrorMessages(res), "; "))
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

// Execute indexes the ranking under a fresh document id.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	doc := RankingDocument{
		RFQID:        input.RFQID,
		ScoringRunID: input.ScoringRunID,
		Weights:      input.Weights,
		Vendors:      input.Vendors,
		Winner:       input.Winner,
		PublishedAt:  h.now().UTC(),
	}
	if doc.Vendors == nil {
		doc.Vendors = []scoring.FinalResult{}
	}
	if doc.Winner != nil {
		doc.WinningVendor = doc.Winner.Vendor
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("encode ranking document: %v", err))
	}

	docID := uuid.NewString()
	res, err := h.client.Index(
		h.config.Index,
		bytes.NewReader(body),
		h.client.Index.WithDocumentID(docID),
		h.client.Index.WithContext(ctx),
	)
	if err != nil {
		metrics.RankingsPublished.WithLabelValues("error").Inc()
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewRankingPublishTimeoutError(h.config.Index)
		}
		return nil, errors.NewRankingPublishFailedError(h.config.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.RankingsPublished.WithLabelValues("rejected").Inc()
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, errors.NewRankingPublishFailedError(h.config.Index,
			fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(detail))))
	}

	metrics.RankingsPublished.WithLabelValues("indexed").Inc()
	h.logger.Info("ranking published", map[string]interface{}{
		"rfqId":         input.RFQID,
		"documentId":    docID,
		"index":         h.config.Index,
		"winningVendor": doc.WinningVendor,
	})

	return &Output{RankingDocumentID: docID, RankingIndex: h.config.Index}, nil
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
	return nil
}
