// Package state provides thread-safe storage of committed selections, received
// payloads and the event log shared by the viewer and the log server.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/payload"
	"github.com/litescript/ls-skyselect/internal/selection"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventSelectionCommitted EventType = "SELECTION_COMMITTED"
	EventSelectionClipped   EventType = "SELECTION_CLIPPED"
	EventPayloadPosted      EventType = "PAYLOAD_POSTED"
	EventPayloadReceived    EventType = "PAYLOAD_RECEIVED"
	EventPostFailed         EventType = "POST_FAILED"
)

// Event represents one entry in the event log.
type Event struct {
	Type       EventType          `json:"type"`
	Timestamp  time.Time          `json:"timestamp"`
	Corners    []astro.Equatorial `json:"corners,omitempty"`
	Telescopes []string           `json:"telescopes,omitempty"`
	Detail     string             `json:"detail,omitempty"`
}

// Record is a payload accepted by the log server.
type Record struct {
	ID       int             `json:"id"`
	Received time.Time       `json:"received"`
	Source   string          `json:"source,omitempty"`
	Payload  payload.Payload `json:"payload"`
}

// Stats counts selections and payloads since start.
type Stats struct {
	Committed    int       `json:"committed"`
	Clipped      int       `json:"clipped"`
	Posted       int       `json:"posted"`
	PostFailures int       `json:"postFailures"`
	Received     int       `json:"received"`
	LastReceived time.Time `json:"lastReceived,omitempty"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Last committed selection
	last    selection.Region
	hasLast bool

	records *ring[Record]
	nextID  int

	// Event log
	events *ring[Event]

	stats Stats
	now   func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxRecords int
	MaxEvents  int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxRecords: 100, // payloads kept for /api/selections
		MaxEvents:  50,  // Last 50 events
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 100
	}
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		records: newRing[Record](maxRecords),
		events:  newRing[Event](maxEvents),
		nextID:  1,
		now:     time.Now,
	}
}

// CommitSelection stores the final region of a drag gesture.
func (m *Manager) CommitSelection(r selection.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = r
	m.hasLast = true
	m.stats.Committed++

	corners := append([]astro.Equatorial(nil), r.Corners[:]...)
	now := m.now()
	m.events.add(Event{Type: EventSelectionCommitted, Timestamp: now, Corners: corners})
	if r.Clipped {
		m.stats.Clipped++
		m.events.add(Event{
			Type:      EventSelectionClipped,
			Timestamp: now,
			Corners:   corners,
			Detail:    "selection exceeded the angular limit",
		})
	}
}

// LastSelection returns the most recently committed region.
func (m *Manager) LastSelection() (selection.Region, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast
}

// RecordPost notes the outcome of sending a payload.
func (m *Manager) RecordPost(p payload.Payload, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Event{Timestamp: m.now(), Telescopes: p.Telescopes()}
	if err != nil {
		m.stats.PostFailures++
		e.Type = EventPostFailed
		e.Detail = err.Error()
	} else {
		m.stats.Posted++
		e.Type = EventPayloadPosted
	}
	m.events.add(e)
}

// AddPayload stores a payload received by the log server and returns its
// record.
func (m *Manager) AddPayload(p payload.Payload, source string) Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{
		ID:       m.nextID,
		Received: m.now(),
		Source:   source,
		Payload:  p,
	}
	m.nextID++
	m.records.add(rec)

	m.stats.Received++
	m.stats.LastReceived = rec.Received
	m.events.add(Event{
		Type:       EventPayloadReceived,
		Timestamp:  rec.Received,
		Corners:    p.Coordinations,
		Telescopes: p.Telescopes(),
		Detail:     source,
	})
	return rec
}

// RecentRecords returns the last n received payloads, oldest first.
func (m *Manager) RecentRecords(n int) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records.last(n)
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.events.last(n)
}

// Stats returns the current counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Last    selection.Region
	HasLast bool
	Records []Record
	Events  []Event
	Stats   Stats
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Last:    m.last,
		HasLast: m.hasLast,
		Records: m.records.ordered(),
		Events:  m.events.ordered(),
		Stats:   m.stats,
	}
}
