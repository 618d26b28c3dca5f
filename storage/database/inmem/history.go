package inmemdb

import (
	"context"
	"sync"

	"github.com/examhub/portal/core"
	"github.com/examhub/portal/core/quiz"
)

type historyStore struct {
	table map[core.ID][]quiz.Entry
	mutex sync.RWMutex
}

var _ quiz.HistoryStore = (*historyStore)(nil)

// NewHistoryStore returns a HistoryStore kept in memory, lost on restart.
func NewHistoryStore() quiz.HistoryStore {
	return &historyStore{table: make(map[core.ID][]quiz.Entry)}
}

func (s *historyStore) Append(_ context.Context, key core.ID, e quiz.Entry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = append(s.table[key], e)
	return nil
}

func (s *historyStore) List(_ context.Context, key core.ID) ([]quiz.Entry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	entries := make([]quiz.Entry, len(s.table[key]))
	copy(entries, s.table[key])
	return entries, nil
}
