package store

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/jool/internal/model"
)

// ストレージ上のキー名。ブラウザ版のCookie名・localStorageキーと揃える。
const (
	TokenCookie  = "token"
	ExpiryCookie = "token_expiry"
	UserDataKey  = "user_data"
)

// SessionStore はトークン用Cookieストアとプロフィール用KVストアを束ねた
// 永続化アダプタ。純粋なget/set/clearのみを提供し、ビジネスロジックは持たない。
//
// 書き込み失敗はこの層で吸収する: SaveTokenは戻り値を持たず（呼び出し側は
// 読み戻しの不在を失敗として扱う）、SaveProfileは成否をboolで返す
// （呼び出し側がトークン書き込みのロールバックを判断するため）。
type SessionStore struct {
	cookies CookieStore
	kv      KeyValueStore
	secure  bool // 本番環境相当ではSecureフラグを立てる
}

// NewSessionStore はSessionStoreを生成する。
func NewSessionStore(cookies CookieStore, kv KeyValueStore, secure bool) *SessionStore {
	return &SessionStore{
		cookies: cookies,
		kv:      kv,
		secure:  secure,
	}
}

// SaveToken はトークンと有効期限をCookieストアに書き込む。
// トークンレコード自体の有効期限にもexpiryを使用する。
// 失敗してもこの層から先へはエラーを投げない。
func (s *SessionStore) SaveToken(token string, expiry time.Time) {
	err := s.cookies.Set(CookieRecord{
		Name:     TokenCookie,
		Value:    token,
		Expires:  expiry,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if err != nil {
		slog.Error("failed to save token", slog.String("error", err.Error()))
		return
	}

	// 有効期限はアプリケーションレベルの厳密チェック用に独立したレコードとして保持する。
	// Cookie機構自体のTTLで消えていなくても、この値で期限切れを判定できる。
	err = s.cookies.Set(CookieRecord{
		Name:     ExpiryCookie,
		Value:    expiry.UTC().Format(time.RFC3339),
		Expires:  expiry,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	if err != nil {
		slog.Error("failed to save token expiry", slog.String("error", err.Error()))
	}
}

// ReadToken はトークンを読み取る。不在の場合はfalseを返す。
func (s *SessionStore) ReadToken() (string, bool) {
	rec, ok := s.cookies.Get(TokenCookie)
	if !ok || rec.Value == "" {
		return "", false
	}
	return rec.Value, true
}

// ReadExpiry は有効期限を読み取る。不在またはパース不能の場合はfalseを返す。
func (s *SessionStore) ReadExpiry() (time.Time, bool) {
	rec, ok := s.cookies.Get(ExpiryCookie)
	if !ok || rec.Value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, rec.Value)
	if err != nil {
		slog.Warn("unparseable token expiry in store", slog.String("value", rec.Value))
		return time.Time{}, false
	}
	return t, true
}

// SaveProfile は正規化済みプロフィールをシリアライズして書き込む。
// 成否を返し、エラーは投げない。
func (s *SessionStore) SaveProfile(profile *model.UserProfile) bool {
	if profile == nil {
		return false
	}
	data, err := json.Marshal(profile)
	if err != nil {
		slog.Error("failed to serialize profile", slog.String("error", err.Error()))
		return false
	}
	if err := s.kv.Set(UserDataKey, string(data)); err != nil {
		slog.Error("failed to save profile", slog.String("error", err.Error()))
		return false
	}
	return true
}

// ReadProfile はプロフィールを読み取る。不在または破損の場合はnilを返す。
// 読み取り時にUserProfileのデシリアライズが正規化を行うため、
// どちらの命名規約で保存されたレコードも読める。
func (s *SessionStore) ReadProfile() *model.UserProfile {
	data, ok := s.kv.Get(UserDataKey)
	if !ok || data == "" {
		return nil
	}
	var profile model.UserProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		slog.Warn("corrupt profile in store", slog.String("error", err.Error()))
		return nil
	}
	return &profile
}

// ClearAll はトークン・有効期限・プロフィールを無条件に削除する。
func (s *SessionStore) ClearAll() {
	s.cookies.Remove(TokenCookie)
	s.cookies.Remove(ExpiryCookie)
	s.kv.Remove(UserDataKey)
}
