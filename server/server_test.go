// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testServer struct {
	url    string
	client *http.Client
	cancel context.CancelFunc
	done   chan error
}

func startServer(t *testing.T, config Config, setup func(*Server)) *testServer {
	t.Helper()
	require := require.New(t)

	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests"})
	require.NoError(registry.Register(counter))
	counter.Inc()

	s := New(logging.NoLog{}, config, registry)
	if setup != nil {
		setup(s)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()
	return &testServer{
		url: "http://" + listener.Addr().String(),
		client: &http.Client{
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		cancel: cancel,
		done:   done,
	}
}

func (ts *testServer) stop(t *testing.T) {
	ts.cancel()
	require.NoError(t, <-ts.done)
}

func (ts *testServer) get(t *testing.T, path string, header http.Header) (*http.Response, string) {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, ts.url+path, nil)
	require.NoError(t, err)
	for key, values := range header {
		request.Header[key] = values
	}
	response, err := ts.client.Do(request)
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, string(body)
}

var testConfig = Config{
	AllowedOrigins:  []string{"https://example.org"},
	ShutdownTimeout: time.Second,
}

func TestRoutes(t *testing.T) {
	require := require.New(t)
	ts := startServer(t, testConfig, func(s *Server) {
		require.NoError(s.AddRoute("/ext/hello", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hello"))
		})))
		require.ErrorIs(s.AddRoute("/ext/hello", http.NotFoundHandler()), errDuplicateRoute)
	})
	defer ts.stop(t)

	response, body := ts.get(t, "/ext/hello", nil)
	require.Equal(http.StatusOK, response.StatusCode)
	require.Equal("hello", body)

	response, body = ts.get(t, HealthEndpoint, nil)
	require.Equal(http.StatusOK, response.StatusCode)
	require.JSONEq(`{"healthy":true}`, body)

	response, body = ts.get(t, MetricsEndpoint, nil)
	require.Equal(http.StatusOK, response.StatusCode)
	require.Contains(body, "test_requests 1")

	response, _ = ts.get(t, "/ext/missing", nil)
	require.Equal(http.StatusNotFound, response.StatusCode)
}

func TestCORS(t *testing.T) {
	require := require.New(t)
	ts := startServer(t, testConfig, nil)
	defer ts.stop(t)

	response, _ := ts.get(t, HealthEndpoint, http.Header{"Origin": {"https://example.org"}})
	require.Equal("https://example.org", response.Header.Get("Access-Control-Allow-Origin"))

	response, _ = ts.get(t, HealthEndpoint, http.Header{"Origin": {"https://evil.example"}})
	require.Empty(response.Header.Get("Access-Control-Allow-Origin"))
}

func TestGzip(t *testing.T) {
	require := require.New(t)
	ts := startServer(t, testConfig, func(s *Server) {
		payload := make([]byte, 4096)
		for i := range payload {
			payload[i] = 'a'
		}
		require.NoError(s.AddRoute("/ext/large", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(payload)
		})))
	})
	defer ts.stop(t)

	// a transport only decompresses transparently if it asked for gzip itself
	response, _ := ts.get(t, "/ext/large", http.Header{"Accept-Encoding": {"gzip"}})
	require.Equal(http.StatusOK, response.StatusCode)
	require.Equal("gzip", response.Header.Get("Content-Encoding"))
}

func TestRateLimit(t *testing.T) {
	require := require.New(t)
	config := testConfig
	config.MaxRequestsPerSecond = 0.001
	ts := startServer(t, config, nil)
	defer ts.stop(t)

	response, _ := ts.get(t, HealthEndpoint, nil)
	require.Equal(http.StatusOK, response.StatusCode)
	response, _ = ts.get(t, HealthEndpoint, nil)
	require.Equal(http.StatusTooManyRequests, response.StatusCode)
}

func TestServeReturnsListenerError(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	require.NoError(listener.Close())

	s := New(logging.NoLog{}, testConfig, prometheus.NewRegistry())
	require.Error(s.Serve(context.Background(), listener))
}
