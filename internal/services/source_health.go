package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/upstream"
)

// RecommendationProbeName keys the recommendation engine in probe results.
const RecommendationProbeName = "recommendation"

// probeTimeout bounds one full probe round.
const probeTimeout = 30 * time.Second

// SourceHealth is the latest probe verdict for one collaborator.
type SourceHealth struct {
	Healthy   bool      `json:"healthy"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// SourceHealthService probes each enabled collaborator's health URL on a
// cron schedule and keeps the last verdict per endpoint.
type SourceHealthService struct {
	registry   *SourceRegistry
	client     *upstream.Client
	metrics    *Metrics // nil disables metrics
	scheduler  gocron.Scheduler
	instanceID string

	mu       sync.RWMutex
	statuses map[string]SourceHealth
}

// NewSourceHealthService creates the probe service.
func NewSourceHealthService(registry *SourceRegistry, client *upstream.Client, metrics *Metrics) (*SourceHealthService, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create probe scheduler: %w", err)
	}

	return &SourceHealthService{
		registry:   registry,
		client:     client,
		metrics:    metrics,
		scheduler:  scheduler,
		instanceID: uuid.New().String()[:8],
		statuses:   make(map[string]SourceHealth),
	}, nil
}

// Start validates the schedule, registers the probe job and runs a first
// probe shortly after startup so /api/sources/health has data early.
func (s *SourceHealthService) Start(schedule string) error {
	// Validate cron expression
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(schedule, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()
			s.CheckAll(ctx)
		}),
		gocron.WithName("source_health_probe_"+s.instanceID),
	)
	if err != nil {
		return fmt.Errorf("failed to register probe job: %w", err)
	}

	s.scheduler.Start()

	// First probe shortly after startup, off the caller's path
	time.AfterFunc(2*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		s.CheckAll(ctx)
	})

	log.Printf("✅ Source health probe started (schedule: %s)", schedule)
	return nil
}

// Stop stops the probe scheduler.
func (s *SourceHealthService) Stop() error {
	log.Println("⏹️ Stopping source health probe...")
	return s.scheduler.Shutdown()
}

// CheckAll probes every enabled collaborator once and returns the
// refreshed verdicts. Probes run concurrently; the health endpoints are
// cheap and independent.
func (s *SourceHealthService) CheckAll(ctx context.Context) map[string]SourceHealth {
	type target struct {
		name string
		url  string
	}
	var targets []target
	for _, key := range models.AllSourceKeys {
		endpoint, err := s.registry.Endpoint(key)
		if err != nil || !endpoint.IsEnabled() {
			continue
		}
		targets = append(targets, target{name: string(key), url: endpoint.HealthURL()})
	}
	if rec := s.registry.Recommendation(); rec.IsEnabled() {
		targets = append(targets, target{name: RecommendationProbeName, url: rec.HealthURL()})
	}

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			s.probe(ctx, t.name, t.url)
		}(t)
	}
	wg.Wait()

	return s.Statuses()
}

func (s *SourceHealthService) probe(ctx context.Context, name, url string) {
	latency, err := s.client.CheckHealth(ctx, name, url)
	status := SourceHealth{
		Healthy:   err == nil,
		LatencyMS: latency.Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		status.Error = err.Error()
		log.Printf("⚠️ Health probe failed for %s: %v", name, err)
	}

	s.mu.Lock()
	s.statuses[name] = status
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSourceUp(name, status.Healthy)
	}
}

// Statuses returns a copy of the latest probe verdicts keyed by source.
func (s *SourceHealthService) Statuses() map[string]SourceHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]SourceHealth, len(s.statuses))
	for name, status := range s.statuses {
		out[name] = status
	}
	return out
}
