package services

import "sync"

// keyedMutex выдаёт отдельный мьютекс на каждый ключ и освобождает его,
// когда никто больше не ждёт.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key int64) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Locks serializes work on a single game and on a single tournament's standings
// within this process. Always take a game lock before a tournament lock.
type Locks struct {
	games       keyedMutex
	tournaments keyedMutex
}

func NewLocks() *Locks {
	return &Locks{}
}

func (l *Locks) Game(gameID int64) (unlock func()) {
	return l.games.Lock(gameID)
}

func (l *Locks) Tournament(tournamentID int64) (unlock func()) {
	return l.tournaments.Lock(tournamentID)
}
