package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestFileCookieStore_RoundTrip は保存したレコードが別インスタンスからも
// 読み取れることを検証する。
func TestFileCookieStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s1 := NewFileCookieStore(dir)
	rec := CookieRecord{Name: "token", Value: "tok-123", Expires: time.Now().Add(time.Hour)}
	if err := s1.Set(rec); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 新しいインスタンス = プロセス再起動相当
	s2 := NewFileCookieStore(dir)
	got, ok := s2.Get("token")
	if !ok {
		t.Fatal("record absent after reopen")
	}
	if got.Value != "tok-123" {
		t.Errorf("Value = %q, want %q", got.Value, "tok-123")
	}
}

// TestFileCookieStore_ExpiredRecord は期限切れレコードが不在として扱われることを検証する。
func TestFileCookieStore_ExpiredRecord(t *testing.T) {
	s := NewFileCookieStore(t.TempDir())

	rec := CookieRecord{Name: "token", Value: "tok-123", Expires: time.Now().Add(-time.Minute)}
	if err := s.Set(rec); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok := s.Get("token"); ok {
		t.Error("expired record should read as absent")
	}
}

// TestFileCookieStore_Remove はレコードの削除を検証する。
func TestFileCookieStore_Remove(t *testing.T) {
	s := NewFileCookieStore(t.TempDir())

	if err := s.Set(CookieRecord{Name: "token", Value: "tok-123", Expires: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Remove("token")

	if _, ok := s.Get("token"); ok {
		t.Error("record should be absent after Remove")
	}

	// 存在しないレコードの削除は何もしない
	s.Remove("missing")
}

// TestFileCookieStore_CorruptFile は破損したストアファイルが空として扱われ、
// 次の書き込みで作り直されることを検証する。
func TestFileCookieStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cookies.json"), []byte("{corrupt"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s := NewFileCookieStore(dir)
	if _, ok := s.Get("token"); ok {
		t.Error("corrupt store should read as empty")
	}

	if err := s.Set(CookieRecord{Name: "token", Value: "tok-123", Expires: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Set after corruption failed: %v", err)
	}
	if _, ok := s.Get("token"); !ok {
		t.Error("record should be readable after rewrite")
	}
}

// TestFileKVStore_RoundTrip は保存した値が別インスタンスからも読み取れることを検証する。
func TestFileKVStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s1 := NewFileKVStore(dir)
	if err := s1.Set("user_data", `{"id":"7"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s2 := NewFileKVStore(dir)
	got, ok := s2.Get("user_data")
	if !ok || got != `{"id":"7"}` {
		t.Errorf("Get() = (%q, %v), want stored value", got, ok)
	}
}

// TestFileKVStore_Remove はキーの削除を検証する。
func TestFileKVStore_Remove(t *testing.T) {
	s := NewFileKVStore(t.TempDir())

	if err := s.Set("user_data", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Remove("user_data")

	if _, ok := s.Get("user_data"); ok {
		t.Error("key should be absent after Remove")
	}
}

// TestFileKVStore_MissingFile はファイル不在時に空ストアとして動作することを検証する。
func TestFileKVStore_MissingFile(t *testing.T) {
	s := NewFileKVStore(t.TempDir())

	if _, ok := s.Get("anything"); ok {
		t.Error("missing file should read as empty store")
	}
}

// TestWriteFileAtomic_Permissions はストアファイルがユーザーのみ読み書き可能な
// パーミッションで作成されることを検証する。
func TestWriteFileAtomic_Permissions(t *testing.T) {
	dir := t.TempDir()
	s := NewFileKVStore(dir)

	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "storage.json"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file permissions = %o, want 600", perm)
	}
}
