// Package audit provides AuditSink implementations: an in-memory ring
// buffer for live inspection and a file-appending sink for a durable
// trail. The core never opens or closes the persisted log itself (§6);
// callers own the sink's lifecycle.
package audit

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/logger"
)

var _ domain.AuditSink = (*RingSink)(nil)
var _ domain.AuditSink = (*FileSink)(nil)

// RingSink keeps the most recent N audit events in memory, dropping the
// oldest once full. Safe for concurrent access.
type RingSink struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
	cap    int
	log    *logger.Logger
}

// NewRingSink creates a ring sink holding at most capacity events.
func NewRingSink(capacity int, log *logger.Logger) *RingSink {
	return &RingSink{cap: capacity, log: log}
}

// Record appends one event, evicting the oldest if the ring is full.
func (s *RingSink) Record(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	if len(s.events) > s.cap {
		s.events = s.events[len(s.events)-s.cap:]
	}
	s.log.Debug("audit: %s old=%q new=%q detail=%q", event.Kind, event.Old, event.New, event.Detail)
	return nil
}

// Events returns a copy of the currently retained events, oldest first.
func (s *RingSink) Events() []domain.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

// FileSink appends one JSON object per line to a durable audit log.
type FileSink struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	log *logger.Logger
}

// NewFileSink opens (creating if absent) path for append and returns a
// sink writing newline-delimited JSON audit events to it.
func NewFileSink(path string, log *logger.Logger) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileSink{f: f, enc: json.NewEncoder(f), log: log}, nil
}

// Record writes one JSON-encoded event line.
func (s *FileSink) Record(_ context.Context, event domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(event); err != nil {
		s.log.Error("audit: writing event: %v", err)
		return err
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
