package storage

import "sync"

// Global store instance and initialization guard. Components resolve the
// store through Global() so the binary can wire Postgres while tests wire a
// MemoryStore.
var (
	globalStore AssessmentStore
	globalOnce  sync.Once
)

// Global returns the singleton assessment store.
// Creates a MemoryStore on first call if not already initialized.
func Global() AssessmentStore {
	globalOnce.Do(func() {
		globalStore = NewMemoryStore()
	})
	return globalStore
}

// InitGlobal initializes the global store with a custom instance.
// Must be called before any call to Global() to take effect.
// Safe for concurrent use but only the first call has any effect.
func InitGlobal(s AssessmentStore) {
	globalOnce.Do(func() {
		globalStore = s
	})
}

// ResetGlobal resets the global store for testing purposes.
// This is NOT thread-safe and should only be used in tests.
func ResetGlobal() {
	globalOnce = sync.Once{}
	globalStore = nil
}
