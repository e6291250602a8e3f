package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/logging"
	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// NoLaneMessage is the user-facing text shown on every card when a turn
// carries no usable lane. Upstream failures get a different message so
// the user can tell "nothing to look up" from "lookup broke".
const NoLaneMessage = "No lane information available yet. Ask about a specific lane to see its rates."

// FanOutService runs one conversation turn against all four sources in
// parallel. Each source is fully independent: its own goroutine, its
// own timeout, its own store generation. One engine failing or
// straggling never touches the other three slots.
type FanOutService struct {
	store       *AggregationStore
	cache       *QuoteCacheService
	registry    *SourceRegistry
	connManager *ConnectionManager // nil disables websocket pushes
	metrics     *Metrics           // nil disables metrics
	timeout     time.Duration
	cards       map[models.SourceKey]SourceCard
	order       []models.SourceKey

	mu           sync.RWMutex
	lastLane     *models.LaneInfo
	lastShipDate string
}

// NewFanOutService wires the fan-out. Cards decide what to fetch; this
// service decides when, stores the results and tells the subscribers.
func NewFanOutService(
	store *AggregationStore,
	cache *QuoteCacheService,
	registry *SourceRegistry,
	connManager *ConnectionManager,
	metrics *Metrics,
	timeout time.Duration,
	cards ...SourceCard,
) *FanOutService {
	s := &FanOutService{
		store:       store,
		cache:       cache,
		registry:    registry,
		connManager: connManager,
		metrics:     metrics,
		timeout:     timeout,
		cards:       make(map[models.SourceKey]SourceCard, len(cards)),
	}
	for _, card := range cards {
		s.cards[card.Key()] = card
		s.order = append(s.order, card.Key())
	}
	return s
}

// Dispatch fires all cards for one turn and returns a channel that
// yields each card's update as it lands, closing when all are done.
// The work runs on detached contexts bounded by the fan-out timeout,
// so it finishes even when the HTTP caller does not wait. Generations
// are allocated here, before any goroutine starts: a turn dispatched
// later always carries higher generations, which is what lets the
// store drop stragglers from an earlier turn.
func (s *FanOutService) Dispatch(turnID string, lane models.LaneInfo, shipDate string) <-chan models.SourceUpdate {
	if lane.Usable() {
		s.setLastLane(lane, shipDate)
	}
	if s.metrics != nil {
		s.metrics.RecordTurn()
	}

	updates := make(chan models.SourceUpdate, len(s.order))
	var wg sync.WaitGroup
	for _, key := range s.order {
		card := s.cards[key]
		gen, err := s.store.NextGeneration(key)
		if err != nil {
			log.Printf("⚠️ Failed to reserve generation for %s: %v", key, err)
			continue
		}
		wg.Add(1)
		go func(card SourceCard, gen uint64) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			updates <- s.runCard(ctx, turnID, card, lane, shipDate, gen, false)
		}(card, gen)
	}
	go func() {
		wg.Wait()
		close(updates)
	}()
	return updates
}

// Keys returns the dispatched source keys in fan-out order.
func (s *FanOutService) Keys() []models.SourceKey {
	keys := make([]models.SourceKey, len(s.order))
	copy(keys, s.order)
	return keys
}

// Refresh re-runs a single card synchronously, against laneOverride
// when given or the last usable lane otherwise. force bypasses the
// quote cache. Without any lane the card lands in its no-lane state,
// same as a laneless turn. An override is used for this call only; it
// does not become the remembered lane.
func (s *FanOutService) Refresh(ctx context.Context, key models.SourceKey, laneOverride *models.LaneInfo, shipDate string, force bool) (models.SourceUpdate, error) {
	card, ok := s.cards[key]
	if !ok {
		return models.SourceUpdate{}, models.ErrInvalidSourceKey
	}

	lane, lastShipDate, hasLane := s.LastLane()
	if !hasLane {
		lane = models.LaneInfo{}
	}
	if laneOverride != nil {
		lane = *laneOverride
	}
	if shipDate == "" {
		shipDate = lastShipDate
	}

	gen, err := s.store.NextGeneration(key)
	if err != nil {
		return models.SourceUpdate{}, err
	}
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.runCard(runCtx, "", card, lane, shipDate, gen, force), nil
}

// Reset empties the store, drops cached quotes and forgets the lane.
// Subscribers get a single store_reset push instead of four updates.
func (s *FanOutService) Reset(ctx context.Context) {
	s.store.Reset()
	s.cache.Flush(ctx)

	s.mu.Lock()
	s.lastLane = nil
	s.lastShipDate = ""
	s.mu.Unlock()

	if s.connManager != nil {
		ready := false
		s.connManager.Broadcast(models.ServerMessage{Type: "store_reset", Ready: &ready})
	}
	log.Println("🔄 Aggregation store reset")
}

// LastLane returns the lane from the most recent usable turn.
func (s *FanOutService) LastLane() (models.LaneInfo, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastLane == nil {
		return models.LaneInfo{}, "", false
	}
	return *s.lastLane, s.lastShipDate, true
}

func (s *FanOutService) setLastLane(lane models.LaneInfo, shipDate string) {
	s.mu.Lock()
	s.lastLane = &lane
	s.lastShipDate = shipDate
	s.mu.Unlock()
}

// runCard executes the per-card contract: no-lane short circuit, cache
// lookup, engine fetch, store write, broadcast. Every exit path writes
// a well-formed entry under the card's generation so a slot is never
// left describing a previous lane.
func (s *FanOutService) runCard(ctx context.Context, turnID string, card SourceCard, lane models.LaneInfo, shipDate string, gen uint64, force bool) models.SourceUpdate {
	key := card.Key()
	logger := logging.WithSource(logging.WithTurn(turnID, lane.Describe()), string(key))

	if !lane.Usable() {
		entry := models.SourceEntry{}
		s.store.Set(key, entry, gen)
		s.recordFetch(key, "no_lane")
		update := models.SourceUpdate{
			TurnID:  turnID,
			Key:     key,
			Status:  models.StatusNoLane,
			Message: NoLaneMessage,
			Entry:   entry,
		}
		s.broadcast(update)
		return update
	}

	if endpoint, err := s.registry.Endpoint(key); err == nil && !endpoint.IsEnabled() {
		entry := models.SourceEntry{}
		s.store.Set(key, entry, gen)
		s.recordFetch(key, "disabled")
		update := models.SourceUpdate{
			TurnID:  turnID,
			Key:     key,
			Status:  models.StatusError,
			Message: key.Label() + " is disabled in the source registry.",
			Entry:   entry,
		}
		s.broadcast(update)
		return update
	}

	cacheKey := s.cache.Key(key, lane, shipDate)
	if !force {
		payload := card.NewPayload()
		if s.cache.Get(ctx, cacheKey, payload) {
			s.recordCacheLookup("hit")
			s.recordFetch(key, "cached")
			entry := models.SourceEntry{HasData: true, Payload: payload, UpdatedAt: time.Now().UTC()}
			accepted, _ := s.store.Set(key, entry, gen)
			update := models.SourceUpdate{
				TurnID: turnID,
				Key:    key,
				Status: models.StatusCached,
				Entry:  entry,
			}
			if accepted {
				s.broadcast(update)
			}
			return update
		}
		s.recordCacheLookup("miss")
	}

	start := time.Now()
	payload, err := card.Fetch(ctx, lane, shipDate)
	s.recordLatency(key, time.Since(start).Seconds())
	if err != nil {
		logger.Warn("source fetch failed", "error", err)
		entry := models.SourceEntry{}
		accepted, _ := s.store.Set(key, entry, gen)
		s.recordFetch(key, "error")
		update := models.SourceUpdate{
			TurnID:  turnID,
			Key:     key,
			Status:  models.StatusError,
			Message: "Unable to retrieve " + key.Label() + " data right now. Please try again.",
			Entry:   entry,
		}
		if accepted {
			s.broadcast(update)
		}
		return update
	}

	entry := models.SourceEntry{HasData: true, Payload: payload, UpdatedAt: time.Now().UTC()}
	accepted, setErr := s.store.Set(key, entry, gen)
	if setErr != nil {
		logger.Error("store write failed", "error", setErr)
	}
	s.cache.Set(ctx, cacheKey, payload)

	update := models.SourceUpdate{
		TurnID: turnID,
		Key:    key,
		Status: models.StatusOK,
		Entry:  entry,
	}
	if !accepted {
		// A newer dispatch already wrote this slot; keep quiet.
		s.recordFetch(key, "stale")
		return update
	}
	s.recordFetch(key, "ok")
	logger.Debug("source fetch landed")
	s.broadcast(update)
	return update
}

func (s *FanOutService) broadcast(update models.SourceUpdate) {
	if s.connManager == nil {
		return
	}
	s.connManager.Broadcast(models.ServerMessage{Type: "source_update", Update: &update})
}

func (s *FanOutService) recordFetch(key models.SourceKey, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSourceFetch(string(key), outcome)
	}
}

func (s *FanOutService) recordLatency(key models.SourceKey, seconds float64) {
	if s.metrics != nil {
		s.metrics.RecordSourceLatency(string(key), seconds)
	}
}

func (s *FanOutService) recordCacheLookup(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}
