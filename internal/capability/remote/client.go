// Package remote implements the signal capabilities against an HTTP sidecar
// that exposes /v1/clean, /v1/quality and /v1/peaks.
package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/httputil"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

const (
	pathClean   = "/v1/clean"
	pathQuality = "/v1/quality"
	pathPeaks   = "/v1/peaks"

	defaultTimeout = 10 * time.Second
	defaultMethod  = "remote"
)

type signalRequest struct {
	Signal         []float64 `json:"signal"`
	SamplingRateHz int       `json:"sampling_rate_hz"`
}

type cleanResponse struct {
	Cleaned []float64 `json:"cleaned"`
}

type qualityResponse struct {
	Quality []float64 `json:"quality"`
}

type peaksResponse struct {
	Method  string `json:"method"`
	Indices []int  `json:"indices"`
}

// Client talks to the signal sidecar.
// One Client satisfies Conditioner, QualityScorer and PeakDetector.
type Client struct {
	baseURL string
	method  string
	http    *httputil.Client
	logger  *logger.Logger
}

var (
	_ contracts.Conditioner   = (*Client)(nil)
	_ contracts.QualityScorer = (*Client)(nil)
	_ contracts.PeakDetector  = (*Client)(nil)
)

// New creates a client for baseURL; method labels the peaks it reports
func New(baseURL, method string, log *logger.Logger) *Client {
	if method == "" {
		method = defaultMethod
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		method:  method,
		http:    httputil.New(log, defaultTimeout),
		logger:  log.WithModule("signal-remote"),
	}
}

// WithHTTPClient replaces the transport client (retry/rate limit settings)
func (c *Client) WithHTTPClient(h *httputil.Client) *Client {
	c.http = h
	return c
}

// Method implements contracts.PeakDetector
func (c *Client) Method() string {
	return c.method
}

// Clean implements contracts.Conditioner
func (c *Client) Clean(ctx context.Context, signal []float64, samplingRateHz int) ([]float64, error) {
	var resp cleanResponse
	if err := c.call(ctx, pathClean, signal, samplingRateHz, &resp); err != nil {
		return nil, err
	}
	if len(resp.Cleaned) != len(signal) {
		return nil, fmt.Errorf("clean: length mismatch: sent %d, got %d", len(signal), len(resp.Cleaned))
	}
	return resp.Cleaned, nil
}

// Score implements contracts.QualityScorer
func (c *Client) Score(ctx context.Context, cleaned []float64, samplingRateHz int) ([]float64, error) {
	var resp qualityResponse
	if err := c.call(ctx, pathQuality, cleaned, samplingRateHz, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrQualityComputation, err)
	}
	if len(resp.Quality) == 0 {
		return nil, fmt.Errorf("%w: empty quality response", contracts.ErrQualityComputation)
	}
	return resp.Quality, nil
}

// Detect implements contracts.PeakDetector
func (c *Client) Detect(ctx context.Context, cleaned []float64, samplingRateHz int) ([]int, error) {
	var resp peaksResponse
	if err := c.call(ctx, pathPeaks, cleaned, samplingRateHz, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrPeakDetection, err)
	}
	for _, idx := range resp.Indices {
		if idx < 0 || idx >= len(cleaned) {
			return nil, fmt.Errorf("%w: index %d out of range [0,%d)", contracts.ErrPeakDetection, idx, len(cleaned))
		}
	}
	return resp.Indices, nil
}

func (c *Client) call(ctx context.Context, path string, signal []float64, fs int, out interface{}) error {
	url := c.baseURL + path
	err := c.http.PostJSON(ctx, url, signalRequest{Signal: signal, SamplingRateHz: fs}, out)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"path":      path,
			"n_samples": len(signal),
		}).WithError(err).Warn("Signal service call failed")
		return fmt.Errorf("signal service %s: %w", path, err)
	}
	return nil
}
