// Package security はクライアントのセキュリティ機能を提供する。
//
// DisplaySanitizerService はAPIから受信した質問・回答の本文を端末表示用に
// サニタイズする。本文はMarkdownだが生のHTMLを埋め込める。bluemondayの
// 厳格ポリシーで全タグを除去し、エスケープシーケンスの類を持ち込ませない。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// DisplaySanitizerService は表示用サニタイズ機能のインターフェースを定義する。
type DisplaySanitizerService interface {
	// Sanitize は本文から全HTMLタグを除去したプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(content string) string
}

// displaySanitizer はDisplaySanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type displaySanitizer struct {
	policy *bluemonday.Policy
}

// NewDisplaySanitizer はDisplaySanitizerServiceの新しいインスタンスを生成する。
// StrictPolicy（全タグ除去）を使用する。
func NewDisplaySanitizer() *displaySanitizer {
	return &displaySanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize は本文から全HTMLタグを除去したプレーンテキストを返す。
// bluemondayはテキストをHTMLエンティティとしてエスケープするため、
// 端末表示用にアンエスケープして返す。
func (s *displaySanitizer) Sanitize(content string) string {
	if content == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(content))
}

// compile-time interface check
var _ DisplaySanitizerService = (*displaySanitizer)(nil)
