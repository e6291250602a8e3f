// Package upstream is the single HTTP door to the external engines: the
// four lane data sources and the recommendation engine. It owns the
// shared transport, per-engine rate limits and request logging so the
// services above it deal only in typed payloads.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

const (
	defaultRatePerSecond = 5
	defaultBurst         = 10
)

// Client is a shared, rate-limited JSON client for the engine suite.
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
	limiters   sync.Map // engine name -> *rate.Limiter
}

// NewClient creates the engine client. The transport is tuned for many
// small requests against a handful of hosts.
func NewClient(timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// SetLimit installs or replaces the rate limit for one engine. Called at
// startup and again whenever the source registry reloads.
func (c *Client) SetLimit(name string, perSecond float64, burst int) {
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	c.limiters.Store(name, rate.NewLimiter(rate.Limit(perSecond), burst))
}

func (c *Client) limiter(name string) *rate.Limiter {
	if l, ok := c.limiters.Load(name); ok {
		return l.(*rate.Limiter)
	}
	l, _ := c.limiters.LoadOrStore(name, rate.NewLimiter(rate.Limit(defaultRatePerSecond), defaultBurst))
	return l.(*rate.Limiter)
}

// PostJSON sends body to one engine and decodes the JSON response into
// out (out may be nil to discard it). Every failure mode wraps
// models.ErrUpstream so callers can classify with a single errors.Is.
func (c *Client) PostJSON(ctx context.Context, name, url string, body, out interface{}) error {
	if err := c.limiter(name).Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s rate limit wait: %v", models.ErrUpstream, name, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"engine": name,
			"url":    url,
			"error":  err.Error(),
		}).Warn("Engine request failed")
		return fmt.Errorf("%w: %s: %v", models.ErrUpstream, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"engine": name,
			"url":    url,
			"status": resp.StatusCode,
		}).Warn("Engine returned non-200 status")
		return fmt.Errorf("%w: %s returned status %d: %s", models.ErrUpstream, name, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: failed to decode %s response: %v", models.ErrUpstream, name, err)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"engine":      name,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Engine request completed")
	return nil
}

// CheckHealth probes an engine's health endpoint and returns the round
// trip latency. Health probes bypass the rate limiter; they run on a
// schedule, not on user traffic.
func (c *Client) CheckHealth(ctx context.Context, name, url string) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s health request: %w", name, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s health check: %v", models.ErrUpstream, name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	latency := time.Since(start)
	if resp.StatusCode != http.StatusOK {
		return latency, fmt.Errorf("%w: %s health returned status %d", models.ErrUpstream, name, resp.StatusCode)
	}
	return latency, nil
}
