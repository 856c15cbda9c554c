package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrpay/internal/platform/logger"
)

const defaultCapacity = 1000

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

func (f Filter) match(e Event) bool {
	return (f.Action == "" || e.Action == f.Action) &&
		(f.EntityType == "" || e.EntityType == f.EntityType) &&
		(f.ActorUser == "" || e.ActorID == f.ActorUser)
}

// Service keeps the most recent audit events in memory, oldest evicted first.
type Service struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	now      func() time.Time
}

func New(capacity int) *Service {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Service{capacity: capacity, now: time.Now}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, after any) error {
	var afterJSON json.RawMessage
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return errors.Wrap(err, "marshal audit payload")
		}
		afterJSON = payload
	}

	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		IP:         ip,
		CreatedAt:  s.now().UTC(),
		After:      afterJSON,
	}

	s.mu.Lock()
	s.events = append(s.events, evt)
	if over := len(s.events) - s.capacity; over > 0 {
		s.events = append(s.events[:0:0], s.events[over:]...)
	}
	s.mu.Unlock()

	logger.Info(ctx, "audit",
		zap.String("action", action),
		zap.String("entityType", entityType),
		zap.String("entityId", entityID),
		zap.String("actor", actorID),
	)
	return nil
}

func (s *Service) Count(_ context.Context, filter Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.events {
		if filter.match(e) {
			total++
		}
	}
	return total
}

// List returns matching events newest first.
func (s *Service) List(_ context.Context, filter Filter, limit, offset int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, min(limit, len(s.events)))
	skipped := 0
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.events[i]
		if !filter.match(e) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out
}
