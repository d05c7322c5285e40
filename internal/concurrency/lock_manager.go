package concurrency

import (
	"sync"
)

// LockManager handles named locks. The settlement engine uses one lock per
// period ID so two in-process settlers never race each other to the database
// exclusivity marker.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// TryLock attempts to take the named lock without blocking. The caller must
// call the returned unlock func iff ok is true.
func (lm *LockManager) TryLock(key string) (unlock func(), ok bool) {
	mu := lm.GetLock(key)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
