// Package server exposes projects, payments and the ledger over HTTP, and
// serves the remote mirror protocol so one harmony instance can back another.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/harmony/internal/auth"
	"github.com/theirongolddev/harmony/internal/clients"
	"github.com/theirongolddev/harmony/internal/invoice"
	"github.com/theirongolddev/harmony/internal/store"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr           string
	AllowedOrigins []string
	LoginRate      string
	RPCToken       string
	RPCOpen        bool
	RemoteURL      string
	SyncInterval   time.Duration
	EventsBuffer   int
	Business       invoice.Business
}

// Deps are the collaborators the server drives.
type Deps struct {
	Manager   *clients.Manager
	Directory *auth.Directory
	Tokens    *auth.Tokens
	KV        store.KV
	Logger    zerolog.Logger
}

// Snapshot is a compact portfolio state for status and event payloads.
type Snapshot struct {
	At                time.Time `json:"at"`
	Projects          int       `json:"projects"`
	Archived          int       `json:"archived"`
	TotalContracted   float64   `json:"total_contracted"`
	TotalCollected    float64   `json:"total_collected"`
	PendingCollection float64   `json:"pending_collection"`
	TotalSpent        float64   `json:"total_spent"`
	OverBudget        int       `json:"over_budget"`
}

// Delta captures snapshot changes caused by one event.
type Delta struct {
	Projects        int     `json:"projects"`
	Archived        int     `json:"archived"`
	TotalContracted float64 `json:"total_contracted"`
	TotalCollected  float64 `json:"total_collected"`
	TotalSpent      float64 `json:"total_spent"`
}

func (d Delta) isZero() bool {
	return d.Projects == 0 &&
		d.Archived == 0 &&
		d.TotalContracted == 0 &&
		d.TotalCollected == 0 &&
		d.TotalSpent == 0
}

// Event is emitted after every change to the collections.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	ClientID  int64     `json:"client_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventClientAdded    = "client_added"
	EventClientUpdated  = "client_updated"
	EventClientArchived = "client_archived"
	EventHistoryDeleted = "history_deleted"
	EventSynced         = "synced"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	RemoteURL       string    `json:"remote_url,omitempty"`
	SyncIntervalSec int       `json:"sync_interval_sec"`
	LastSyncAt      time.Time `json:"last_sync_at"`
	SyncCount       int64     `json:"sync_count"`
	LastError       string    `json:"last_error,omitempty"`
	Summary         Snapshot  `json:"summary"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API.
type Service struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastSyncAt  time.Time
	syncCount   int64
	lastError   string
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service with the provided config.
func New(cfg Config, deps Deps) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.LoginRate == "" {
		cfg.LoginRate = "10-M"
	}
	if cfg.Business.Name == "" {
		cfg.Business = invoice.DefaultBusiness
	}

	s := &Service{
		cfg:       cfg,
		deps:      deps,
		log:       deps.Logger.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.snapshot = s.takeSnapshot(s.startedAt)
	return s
}

// Run serves HTTP until ctx is canceled. With a sync interval set, the
// active list is refreshed from the remote endpoint on every tick.
func (s *Service) Run(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")

	var tick <-chan time.Time
	if s.cfg.SyncInterval > 0 {
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		tick = ticker.C
		s.syncOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			s.deps.Manager.Wait()
			return err
		case <-tick:
			s.syncOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

func (s *Service) syncOnce(ctx context.Context) {
	_, err := s.deps.Manager.Sync(ctx)
	now := time.Now()

	s.mu.Lock()
	s.lastSyncAt = now
	s.syncCount++
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, clients.ErrNoRemote) {
			s.log.Warn().Err(err).Msg("periodic sync failed")
		}
		return
	}
	s.record(EventSynced, 0)
}

func (s *Service) takeSnapshot(at time.Time) Snapshot {
	stats := s.deps.Manager.Portfolio()
	return Snapshot{
		At:                at,
		Projects:          stats.Projects,
		Archived:          len(s.deps.Manager.History()),
		TotalContracted:   stats.TotalContracted,
		TotalCollected:    stats.TotalCollected,
		PendingCollection: stats.PendingCollection,
		TotalSpent:        stats.TotalSpent,
		OverBudget:        stats.OverBudget,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Projects:        curr.Projects - prev.Projects,
		Archived:        curr.Archived - prev.Archived,
		TotalContracted: curr.TotalContracted - prev.TotalContracted,
		TotalCollected:  curr.TotalCollected - prev.TotalCollected,
		TotalSpent:      curr.TotalSpent - prev.TotalSpent,
	}
}

// record takes a fresh snapshot after a change and publishes the event.
// Syncs that change nothing are not published.
func (s *Service) record(eventType string, clientID int64) {
	now := time.Now()
	snap := s.takeSnapshot(now)

	s.mu.Lock()
	delta := diffSnapshots(s.snapshot, snap)
	s.snapshot = snap
	if eventType == EventSynced && delta.isZero() {
		s.mu.Unlock()
		return
	}
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      eventType,
		ClientID:  clientID,
		Timestamp: now,
		Snapshot:  snap,
		Delta:     delta,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		RemoteURL:       s.cfg.RemoteURL,
		SyncIntervalSec: int(s.cfg.SyncInterval.Seconds()),
		LastSyncAt:      s.lastSyncAt,
		SyncCount:       s.syncCount,
		LastError:       s.lastError,
		Summary:         s.snapshot,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
