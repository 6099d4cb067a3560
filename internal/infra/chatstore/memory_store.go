package chatstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/skinscan/internal/domain/chatbot"
)

// DefaultMaxTracked bounds the distinct questions a store keeps when no limit is given.
const DefaultMaxTracked = 1000

// MemoryStore counts chat questions in process memory for tests/dev.
type MemoryStore struct {
	mu         sync.RWMutex
	maxTracked int
	tick       uint64
	queries    map[string]*trackedQuery
}

type trackedQuery struct {
	count   int64
	display string
	touched uint64
}

// NewMemoryStore constructs an empty store holding at most maxTracked questions.
func NewMemoryStore(maxTracked int) *MemoryStore {
	if maxTracked <= 0 {
		maxTracked = DefaultMaxTracked
	}
	return &MemoryStore{
		maxTracked: maxTracked,
		queries:    make(map[string]*trackedQuery),
	}
}

// IncrementQuery bumps the counter for a normalized question and keeps the first display text.
// A new question arriving at capacity evicts the least asked one.
func (s *MemoryStore) IncrementQuery(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick++
	q, exists := s.queries[canonical]
	if !exists {
		if len(s.queries) >= s.maxTracked {
			s.evictLocked()
		}
		q = &trackedQuery{display: display}
		s.queries[canonical] = q
	}
	q.count++
	q.touched = s.tick
	return nil
}

// evictLocked drops the lowest count, oldest on ties.
func (s *MemoryStore) evictLocked() {
	var (
		victim string
		worst  *trackedQuery
	)
	for canonical, q := range s.queries {
		if worst == nil || q.count < worst.count || (q.count == worst.count && q.touched < worst.touched) {
			victim, worst = canonical, q
		}
	}
	delete(s.queries, victim)
}

// TopQueries returns the most frequent questions, ties broken alphabetically.
func (s *MemoryStore) TopQueries(_ context.Context, limit int) ([]chatbot.TrendingQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.queries)
	}
	items := make([]chatbot.TrendingQuery, 0, len(s.queries))
	for canonical, q := range s.queries {
		display := q.display
		if display == "" {
			display = canonical
		}
		items = append(items, chatbot.TrendingQuery{Query: display, Count: q.count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Query < items[j].Query
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ chatbot.Store = (*MemoryStore)(nil)
