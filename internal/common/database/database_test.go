package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfq-workers/internal/common/config"
	"rfq-workers/internal/common/logger"
)

func TestNewPostgres_ConfiguresPool(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, User: "u", Database: "sourcing",
		SSLMode: "disable", MaxConnections: 7, MaxIdle: 2,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.GetDB().Stats().MaxOpenConnections)
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestElasticsearchClient_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	require.NoError(t, client.Ping(context.Background()))

	status.Store(http.StatusNotFound)
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestNewClients_RequireAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.ErrorContains(t, err, "redis address is required")

	_, err = NewElasticsearch(config.ElasticsearchConfig{})
	assert.ErrorContains(t, err, "elasticsearch address is required")
}

// fakeIndices answers the index exists/create calls EnsureIndex makes.
type fakeIndices struct {
	existsStatus int
	createStatus int
	createBody   string
	created      atomic.Int32
	body         atomic.Value
}

func (f *fakeIndices) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(f.existsStatus)
	case http.MethodPut:
		f.created.Add(1)
		data, _ := io.ReadAll(r.Body)
		f.body.Store(string(data))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.createStatus)
		_, _ = io.WriteString(w, f.createBody)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	const mapping = `{"mappings":{"properties":{"rfqId":{"type":"keyword"}}}}`

	tests := []struct {
		name        string
		fake        *fakeIndices
		wantCreated bool
		wantCalls   int32
		wantErr     string
	}{
		{
			name:      "already exists",
			fake:      &fakeIndices{existsStatus: http.StatusOK},
			wantCalls: 0,
		},
		{
			name:        "created",
			fake:        &fakeIndices{existsStatus: http.StatusNotFound, createStatus: http.StatusOK, createBody: `{"acknowledged":true}`},
			wantCreated: true,
			wantCalls:   1,
		},
		{
			name: "lost creation race",
			fake: &fakeIndices{
				existsStatus: http.StatusNotFound,
				createStatus: http.StatusBadRequest,
				createBody:   `{"error":{"type":"resource_already_exists_exception"}}`,
			},
			wantCalls: 1,
		},
		{
			name: "create rejected",
			fake: &fakeIndices{
				existsStatus: http.StatusNotFound,
				createStatus: http.StatusBadRequest,
				createBody:   `{"error":{"type":"mapper_parsing_exception"}}`,
			},
			wantCalls: 1,
			wantErr:   "mapper_parsing_exception",
		},
		{
			name:    "exists check denied",
			fake:    &fakeIndices{existsStatus: http.StatusForbidden},
			wantErr: "403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.fake)
			defer srv.Close()

			client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)

			created, err := client.EnsureIndex(context.Background(), "vendor-rankings", mapping)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantCalls, tt.fake.created.Load())
			if tt.wantCalls > 0 {
				assert.JSONEq(t, mapping, tt.fake.body.Load().(string))
			}
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp: connection refused")
			}
			return nil
		}, 5, time.Millisecond, logger.NewTestLogger(t), "postgres")

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func(context.Context) error {
			calls++
			return errors.New("down")
		}, 2, time.Millisecond, logger.NewNoOpLogger(), "redis")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis unavailable after 2 attempts")
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := RetryWithBackoff(ctx, func(context.Context) error {
			cancel()
			return errors.New("down")
		}, 5, time.Hour, logger.NewNoOpLogger(), "elasticsearch")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClients_PingersAndClose(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)

	c := &Clients{Redis: rdb}
	pingers := c.Pingers()
	assert.Len(t, pingers, 3)
	require.NoError(t, pingers["redis"].Ping(context.Background()))

	c.Close()
	assert.Error(t, pingers["redis"].Ping(context.Background()))
}
