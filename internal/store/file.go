package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileCookieStore はJSONファイルに保存するCookieStore実装。
// CLIの複数回起動をまたいでセッションを保持するために使用する。
// ファイルはユーザーのみ読み書き可能なパーミッションで作成する。
type FileCookieStore struct {
	mu   sync.Mutex
	path string
}

// NewFileCookieStore はdir配下のcookies.jsonを使用するFileCookieStoreを生成する。
func NewFileCookieStore(dir string) *FileCookieStore {
	return &FileCookieStore{path: filepath.Join(dir, "cookies.json")}
}

// Set はレコードを保存する。
func (s *FileCookieStore) Set(rec CookieRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	records[rec.Name] = rec
	return s.save(records)
}

// Get はレコードを取得する。期限切れレコードは不在として扱う。
func (s *FileCookieStore) Get(name string) (CookieRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return CookieRecord{}, false
	}
	rec, ok := records[name]
	if !ok || rec.Expired(time.Now()) {
		return CookieRecord{}, false
	}
	return rec, true
}

// Remove はレコードを削除する。
func (s *FileCookieStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return
	}
	if _, ok := records[name]; !ok {
		return
	}
	delete(records, name)
	_ = s.save(records)
}

func (s *FileCookieStore) load() (map[string]CookieRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]CookieRecord), nil
		}
		return nil, fmt.Errorf("failed to read cookie store: %w", err)
	}
	records := make(map[string]CookieRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		// 壊れたファイルは空として扱い、次の書き込みで作り直す
		return make(map[string]CookieRecord), nil
	}
	return records, nil
}

func (s *FileCookieStore) save(records map[string]CookieRecord) error {
	return writeFileAtomic(s.path, records)
}

// FileKVStore はJSONファイルに保存するKeyValueStore実装。
type FileKVStore struct {
	mu   sync.Mutex
	path string
}

// NewFileKVStore はdir配下のstorage.jsonを使用するFileKVStoreを生成する。
func NewFileKVStore(dir string) *FileKVStore {
	return &FileKVStore{path: filepath.Join(dir, "storage.json")}
}

// Set は値を保存する。
func (s *FileKVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return writeFileAtomic(s.path, values)
}

// Get は値を取得する。
func (s *FileKVStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

// Remove はキーを削除する。
func (s *FileKVStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return
	}
	if _, ok := values[key]; !ok {
		return
	}
	delete(values, key)
	_ = writeFileAtomic(s.path, values)
}

func (s *FileKVStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read kv store: %w", err)
	}
	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return make(map[string]string), nil
	}
	return values, nil
}

// writeFileAtomic はJSONを一時ファイルに書き込んでからリネームする。
// 書き込み途中のクラッシュで既存データを壊さないようにする。
func writeFileAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal store data: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// --- compile-time interface checks ---
var _ CookieStore = (*FileCookieStore)(nil)
var _ KeyValueStore = (*FileKVStore)(nil)
