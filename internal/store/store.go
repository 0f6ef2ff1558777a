// Package store はセッション状態の永続化アダプタを提供する。
//
// ブラウザ版のJOOLはベアラートークンと有効期限をCookieに、ユーザープロフィールを
// localStorageに保持していた。このパッケージはその2つの基盤をCookieレコード
// ストアとキーバリューストアとして抽象化し、上位層（認証フロー・セッション照会）
// からグローバルなストレージ参照を排除する。テストではインメモリ実装を注入する。
package store

import (
	"net/http"
	"time"
)

// CookieRecord はブラウザCookie相当の永続化レコードを表す。
// Expiresはレコード自体の有効期限で、経過後はストアから読めなくなる。
type CookieRecord struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Expires  time.Time     `json:"expires"`
	Secure   bool          `json:"secure"`
	SameSite http.SameSite `json:"same_site"`
}

// Expired はレコード自体の有効期限が経過したかどうかを返す。
func (r CookieRecord) Expired(now time.Time) bool {
	return !r.Expires.IsZero() && !r.Expires.After(now)
}

// CookieStore はCookieレコードストアのインターフェース。
type CookieStore interface {
	// Set はレコードを保存する。同名レコードは置き換える。
	Set(rec CookieRecord) error
	// Get はレコードを取得する。存在しない、または期限切れの場合はfalseを返す。
	Get(name string) (CookieRecord, bool)
	// Remove はレコードを削除する。存在しない場合は何もしない。
	Remove(name string)
}

// KeyValueStore はキーバリューストアのインターフェース。
type KeyValueStore interface {
	// Set は値を保存する。既存キーは上書きする。
	Set(key, value string) error
	// Get は値を取得する。存在しない場合はfalseを返す。
	Get(key string) (string, bool)
	// Remove はキーを削除する。存在しない場合は何もしない。
	Remove(key string)
}
