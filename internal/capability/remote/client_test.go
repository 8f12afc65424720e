package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/httputil"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

// sidecar is a minimal signal service: clean doubles, quality is constant, peaks every 100 samples
func sidecar(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	decode := func(r *http.Request) signalRequest {
		var req signalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		return req
	}

	mux.HandleFunc(pathClean, func(w http.ResponseWriter, r *http.Request) {
		req := decode(r)
		out := make([]float64, len(req.Signal))
		for i, v := range req.Signal {
			out[i] = 2 * v
		}
		_ = json.NewEncoder(w).Encode(cleanResponse{Cleaned: out})
	})
	mux.HandleFunc(pathQuality, func(w http.ResponseWriter, r *http.Request) {
		req := decode(r)
		out := make([]float64, len(req.Signal))
		for i := range out {
			out[i] = 0.9
		}
		_ = json.NewEncoder(w).Encode(qualityResponse{Quality: out})
	})
	mux.HandleFunc(pathPeaks, func(w http.ResponseWriter, r *http.Request) {
		req := decode(r)
		var idx []int
		for i := 50; i < len(req.Signal); i += 100 {
			idx = append(idx, i)
		}
		_ = json.NewEncoder(w).Encode(peaksResponse{Method: "neurokit", Indices: idx})
	})
	return httptest.NewServer(mux)
}

func newClient(url string) *Client {
	c := New(url+"/", "neurokit", logger.Nop())
	return c.WithHTTPClient(httputil.New(logger.Nop(), time.Second).DisableRetry())
}

func TestClient_RoundTrip(t *testing.T) {
	srv := sidecar(t)
	defer srv.Close()
	c := newClient(srv.URL)
	ctx := context.Background()
	signal := make([]float64, 500)
	for i := range signal {
		signal[i] = float64(i)
	}

	cleaned, err := c.Clean(ctx, signal, 250)
	require.NoError(t, err)
	assert.Equal(t, 998.0, cleaned[499])

	q, err := c.Score(ctx, cleaned, 250)
	require.NoError(t, err)
	assert.Len(t, q, 500)

	peaks, err := c.Detect(ctx, cleaned, 250)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 150, 250, 350, 450}, peaks)
	assert.Equal(t, "neurokit", c.Method())
}

func TestClient_DefaultMethod(t *testing.T) {
	assert.Equal(t, "remote", New("http://x", "", logger.Nop()).Method())
}

func TestClient_ErrorsMapToSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer srv.Close()
	c := newClient(srv.URL)
	ctx := context.Background()

	_, err := c.Score(ctx, []float64{1, 2, 3}, 100)
	assert.True(t, errors.Is(err, contracts.ErrQualityComputation))

	_, err = c.Detect(ctx, []float64{1, 2, 3}, 100)
	assert.True(t, errors.Is(err, contracts.ErrPeakDetection))

	_, err = c.Clean(ctx, []float64{1, 2, 3}, 100)
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestClient_RejectsMalformedResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathClean:
			_ = json.NewEncoder(w).Encode(cleanResponse{Cleaned: []float64{1}})
		case pathQuality:
			_ = json.NewEncoder(w).Encode(qualityResponse{})
		case pathPeaks:
			_ = json.NewEncoder(w).Encode(peaksResponse{Indices: []int{1, 99}})
		}
	}))
	defer srv.Close()
	c := newClient(srv.URL)
	ctx := context.Background()
	signal := []float64{1, 2, 3, 4}

	_, err := c.Clean(ctx, signal, 100)
	assert.ErrorContains(t, err, "length mismatch")

	_, err = c.Score(ctx, signal, 100)
	assert.True(t, errors.Is(err, contracts.ErrQualityComputation))

	_, err = c.Detect(ctx, signal, 100)
	assert.True(t, errors.Is(err, contracts.ErrPeakDetection))
	assert.ErrorContains(t, err, "out of range")
}
