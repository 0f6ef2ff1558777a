package store

import (
	"sync"
	"time"
)

// MemoryCookieStore はインメモリのCookieStore実装。主にテストで使用する。
type MemoryCookieStore struct {
	mu      sync.RWMutex
	records map[string]CookieRecord
}

// NewMemoryCookieStore はMemoryCookieStoreを生成する。
func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{records: make(map[string]CookieRecord)}
}

// Set はレコードを保存する。
func (s *MemoryCookieStore) Set(rec CookieRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Name] = rec
	return nil
}

// Get はレコードを取得する。期限切れレコードは不在として扱う。
func (s *MemoryCookieStore) Get(name string) (CookieRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[name]
	if !ok || rec.Expired(time.Now()) {
		return CookieRecord{}, false
	}
	return rec, true
}

// Remove はレコードを削除する。
func (s *MemoryCookieStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
}

// MemoryKVStore はインメモリのKeyValueStore実装。主にテストで使用する。
type MemoryKVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKVStore はMemoryKVStoreを生成する。
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string]string)}
}

// Set は値を保存する。
func (s *MemoryKVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Get は値を取得する。
func (s *MemoryKVStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Remove はキーを削除する。
func (s *MemoryKVStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// --- compile-time interface checks ---
var _ CookieStore = (*MemoryCookieStore)(nil)
var _ KeyValueStore = (*MemoryKVStore)(nil)
