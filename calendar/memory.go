package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryAPI is a destination calendar held in process memory. It backs the
// "memory" provider and the test suite; state is lost on exit.
type MemoryAPI struct {
	mu     sync.RWMutex
	events map[string]*Event
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{
		events: make(map[string]*Event),
	}
}

func (m *MemoryAPI) FindEvent(ctx context.Context, fixtureID string, timeMin time.Time) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ev := range m.events {
		if ev.FixtureID() != fixtureID {
			continue
		}
		if ev.Start.Before(timeMin) {
			continue
		}
		return cloneEvent(ev), nil
	}
	return nil, nil
}

func (m *MemoryAPI) ListEvents(ctx context.Context, syncTag string, timeMin time.Time) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Event
	for _, ev := range m.events {
		if ev.Private[PropSyncTag] != syncTag {
			continue
		}
		if ev.Start.Before(timeMin) {
			continue
		}
		out = append(out, cloneEvent(ev))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (m *MemoryAPI) InsertEvent(ctx context.Context, ev *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneEvent(ev)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	} else if _, ok := m.events[stored.ID]; ok {
		return nil, ErrEventExists
	}
	m.events[stored.ID] = stored
	return cloneEvent(stored), nil
}

func (m *MemoryAPI) UpdateEvent(ctx context.Context, ev *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[ev.ID]; !ok {
		return nil, ErrEventNotFound
	}
	m.events[ev.ID] = cloneEvent(ev)
	return cloneEvent(ev), nil
}

func (m *MemoryAPI) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

// Len reports how many events the destination currently holds.
func (m *MemoryAPI) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

func cloneEvent(ev *Event) *Event {
	cp := *ev
	cp.Reminders = append([]Reminder(nil), ev.Reminders...)
	if ev.Private != nil {
		cp.Private = make(map[string]string, len(ev.Private))
		for k, v := range ev.Private {
			cp.Private[k] = v
		}
	}
	return &cp
}

var _ API = (*MemoryAPI)(nil)
