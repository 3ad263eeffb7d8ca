package common

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
)

// RegistryLock serializes registry mutations. Votes, mints and submissions
// share the read side so they run concurrently with each other, the daily
// rotation takes the write side. Keyed locks serialize work on one project or
// one wallet.
type RegistryLock struct {
	rotation sync.RWMutex
	keys     *xsync.MapOf[string, *sync.Mutex]
}

func NewRegistryLock() *RegistryLock {
	return &RegistryLock{keys: xsync.NewMapOf[*sync.Mutex]()}
}

func (l *RegistryLock) Mutate() (unlock func()) {
	l.rotation.RLock()
	return l.rotation.RUnlock
}

func (l *RegistryLock) Rotate() (unlock func()) {
	l.rotation.Lock()
	return l.rotation.Unlock
}

// LockKeys locks each key in the given order. Callers must always pass keys
// in the same relative order (wallet before project) to avoid deadlocks.
func (l *RegistryLock) LockKeys(keys ...string) (unlock func()) {
	locked := make([]*sync.Mutex, 0, len(keys))
	for _, key := range keys {
		mutex, _ := l.keys.LoadOrStore(key, &sync.Mutex{})
		mutex.Lock()
		locked = append(locked, mutex)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

func WalletLockKey(wallet string) string {
	return "wallet:" + wallet
}

func ProjectLockKey(projectID string) string {
	return "project:" + projectID
}
