// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// FlexibleID はJSON上で文字列・数値のどちらでも表現されうる識別子。
// ログインAPIは数値ID、SSOペイロードは文字列IDを返すことがある。
type FlexibleID string

// UnmarshalJSON は文字列または数値のJSON値を受け付ける。
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// RawUserRecord は正規化前のユーザーレコードを表す。
// ログインAPIとSSOリダイレクトペイロードで命名規約（snake_case / camelCase）が
// 異なるため、両方のフィールド名を受け付ける。
type RawUserRecord struct {
	ID           FlexibleID `json:"id,omitempty"`
	UserID       FlexibleID `json:"user_id,omitempty"`
	Email        string     `json:"email,omitempty"`
	FirstName    string     `json:"first_name,omitempty"`
	FirstNameAlt string     `json:"firstName,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	LastNameAlt  string     `json:"lastName,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"`
	IsActiveAlt  *bool      `json:"isActive,omitempty"`
	HasImage     *bool      `json:"has_image,omitempty"`
	HasImageAlt  *bool      `json:"hasImage,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
}

// UserProfile は正規化済みのユーザープロフィールを表す。
// IsActive・HasImage・Phoneは両方の規約で欠落している場合にnilのままとなる。
// 名前フィールドは欠落時に空文字列となる。IDが空の場合、レコードは無効として扱う。
type UserProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	IsActive  *bool
	HasImage  *bool
	Phone     *string
}

// Valid はプロフィールが識別子を持つかどうかを返す。
// 識別子が両方の規約で欠落している場合、呼び出し側はレコードを無効として扱う。
func (p *UserProfile) Valid() bool {
	return p != nil && p.ID != ""
}

// FullName は表示用のフルネームを返す。両方の名前が空の場合はプレースホルダを返す。
func (p *UserProfile) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return "Usuario"
	}
	return name
}

// Username はメールアドレスのローカル部をユーザー名として返す。
func (p *UserProfile) Username() string {
	if p.Email == "" {
		return "usuario"
	}
	return strings.SplitN(p.Email, "@", 2)[0]
}

// IsOwnerOf はリソースの所有者IDと一致するかどうかを返す。
func (p *UserProfile) IsOwnerOf(resourceUserID string) bool {
	return p.Valid() && resourceUserID != "" && p.ID == resourceUserID
}

// userProfileJSON はUserProfileの永続化形式。
// どちらの命名規約で読むコンシューマーも成功するよう、識別子と名前フィールドは
// 必ず両方のエイリアスで書き出す。
type userProfileJSON struct {
	ID           string  `json:"id,omitempty"`
	UserID       string  `json:"user_id,omitempty"`
	Email        string  `json:"email,omitempty"`
	FirstName    string  `json:"first_name"`
	FirstNameAlt string  `json:"firstName"`
	LastName     string  `json:"last_name"`
	LastNameAlt  string  `json:"lastName"`
	IsActive     *bool   `json:"is_active,omitempty"`
	IsActiveAlt  *bool   `json:"isActive,omitempty"`
	HasImage     *bool   `json:"has_image,omitempty"`
	HasImageAlt  *bool   `json:"hasImage,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

// MarshalJSON は両エイリアスを持つ正規形式でシリアライズする。
func (p UserProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(userProfileJSON{
		ID:           p.ID,
		UserID:       p.ID,
		Email:        p.Email,
		FirstName:    p.FirstName,
		FirstNameAlt: p.FirstName,
		LastName:     p.LastName,
		LastNameAlt:  p.LastName,
		IsActive:     p.IsActive,
		IsActiveAlt:  p.IsActive,
		HasImage:     p.HasImage,
		HasImageAlt:  p.HasImage,
		Phone:        p.Phone,
	})
}

// UnmarshalJSON はどちらの命名規約で書かれたレコードも読み取る。
// 各フィールドは最初に見つかった非空値を採用する。
func (p *UserProfile) UnmarshalJSON(data []byte) error {
	var raw RawUserRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = raw.Canonical()
	return nil
}

// Canonical は未正規化レコードから正規形式のUserProfileを組み立てる。
// 識別子と名前フィールドはどちらかの規約に存在する値（最初の非空値）を採用する。
func (r RawUserRecord) Canonical() UserProfile {
	return UserProfile{
		ID:        firstNonEmpty(string(r.ID), string(r.UserID)),
		Email:     r.Email,
		FirstName: firstNonEmpty(r.FirstName, r.FirstNameAlt),
		LastName:  firstNonEmpty(r.LastName, r.LastNameAlt),
		IsActive:  firstNonNil(r.IsActive, r.IsActiveAlt),
		HasImage:  firstNonNil(r.HasImage, r.HasImageAlt),
		Phone:     r.Phone,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonNil(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// SessionBundle は認証成功時に呼び出し元へ返す組。
// 画面遷移は呼び出し元の責務とする。
type SessionBundle struct {
	Token   string
	Expiry  time.Time
	Profile UserProfile
}

// RegistrationData は新規ユーザー登録のリクエストデータ。
type RegistrationData struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone,omitempty"`
}
