package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfq-workers/internal/common/database"
	"rfq-workers/internal/common/errors"
	pvr "rfq-workers/internal/workers/procurement/publish-vendor-ranking"
	svq "rfq-workers/internal/workers/procurement/score-vendor-quotes"
	"rfq-workers/pkg/registry"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthMux_Ready(t *testing.T) {
	mux := newHealthMux(map[string]database.Pinger{
		"postgres": fakePinger{},
		"redis":    fakePinger{},
	}, &registry.ActivityRegistry{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestHealthMux_NotReady(t *testing.T) {
	mux := newHealthMux(map[string]database.Pinger{
		"postgres": fakePinger{},
		"redis":    fakePinger{err: stderrors.New("redis ping failed: connection refused")},
	}, &registry.ActivityRegistry{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "ok", body.Checks["postgres"])
	assert.Contains(t, body.Checks["redis"], "connection refused")
}

func TestHealthMux_HealthAndMetrics(t *testing.T) {
	mux := newHealthMux(nil, &registry.ActivityRegistry{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func loadShippedRegistry(t *testing.T) *registry.ActivityRegistry {
	t.Helper()
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", registryPath))
	require.NoError(t, err)
	return reg
}

func TestRegistry_CoversEveryWorker(t *testing.T) {
	reg := loadShippedRegistry(t)

	assert.Empty(t, unregisteredTaskTypes(reg, []string{svq.TaskType, pvr.TaskType}))
	assert.Equal(t, []string{"other-task"}, unregisteredTaskTypes(reg, []string{svq.TaskType, "other-task"}))
}

func TestRegistry_ErrorCodesAreThrowable(t *testing.T) {
	reg := loadShippedRegistry(t)

	throwable := map[string]bool{}
	for code, bpmn := range errors.BPMNErrorMapping {
		throwable[bpmn] = true
		throwable[string(code)] = true
	}
	throwable[string(errors.ErrCodeBusinessRule)] = true

	for _, activity := range reg.Activities {
		for _, code := range activity.ErrorCodes {
			assert.True(t, throwable[code], "%s declares unknown error code %s", activity.TaskType, code)
		}
	}
}

func TestHealthMux_Activities(t *testing.T) {
	mux := newHealthMux(nil, loadShippedRegistry(t))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activities", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var reg registry.ActivityRegistry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Len(t, reg.Activities, 2)
}
