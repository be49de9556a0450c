package chat

import (
	"sync"

	"github.com/google/uuid"
)

// tradeLocks выдаёт мьютекс на обмен; запись удаляется, когда он никому не нужен
type tradeLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*tradeLock
}

type tradeLock struct {
	mu   sync.Mutex
	refs int
}

func newTradeLocks() *tradeLocks {
	return &tradeLocks{locks: make(map[uuid.UUID]*tradeLock)}
}

// lock блокирует обмен и возвращает функцию разблокировки
func (l *tradeLocks) lock(tradeID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[tradeID]
	if !ok {
		entry = &tradeLock{}
		l.locks[tradeID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, tradeID)
		}
		l.mu.Unlock()
	}
}
