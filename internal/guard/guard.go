// Package guard は保護された画面の描画前認証チェックを提供する。
package guard

import (
	"errors"
	"log/slog"
)

// State はガードの状態を表す。
type State int

const (
	// StateChecking は認証チェック中。対応する画面はローディング表示を出す。
	StateChecking State = iota
	// StateAuthorized は認証済み。保護されたコンテンツを描画してよい。
	// このマウントにおける終端状態。
	StateAuthorized
	// StateRedirecting は未認証でログインページへ遷移中。何も描画しない。
	// このマウントにおける終端状態。
	StateRedirecting
)

// String はStateの文字列表現を返す。
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// ErrNotAuthenticated は未認証のため保護された操作を実行できないことを示す。
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionChecker は認証状態の確認に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionChecker interface {
	IsAuthenticated() bool
}

// Navigator はログインページへの遷移に必要なインターフェース。
type Navigator interface {
	// Replace は履歴エントリを残さずに遷移する。
	// 戻る操作で保護されたページに復帰できないようにするため、pushではなくreplaceを使う。
	Replace(url string)
}

// Guard は保護された画面のマウントごとに生成される認証ゲート。
// Checking → {Authorized, Redirecting} の一方向遷移で、一度解決した状態は変わらない。
type Guard struct {
	session  SessionChecker
	nav      Navigator
	loginURL string
	state    State
	resolved bool
}

// New はChecking状態のGuardを生成する。
func New(session SessionChecker, nav Navigator, loginURL string) *Guard {
	if loginURL == "" {
		loginURL = "/login"
	}
	return &Guard{
		session:  session,
		nav:      nav,
		loginURL: loginURL,
		state:    StateChecking,
	}
}

// State は現在の状態を返す。
func (g *Guard) State() State {
	return g.state
}

// Resolve は認証チェックを実行し、解決後の状態を返す。
// 未認証の場合はログインページへのreplace遷移を行う。
// 2回目以降の呼び出しは最初に解決した状態をそのまま返す。
func (g *Guard) Resolve() State {
	if g.resolved {
		return g.state
	}
	g.resolved = true

	if g.session.IsAuthenticated() {
		g.state = StateAuthorized
		return g.state
	}

	slog.Info("unauthenticated access to protected view, redirecting",
		slog.String("login_url", g.loginURL),
	)
	g.state = StateRedirecting
	g.nav.Replace(g.loginURL)
	return g.state
}

// Run は認証済みの場合のみprotectedを実行する。
// 未認証の場合はログイン遷移を行い、ErrNotAuthenticatedを返す。
func (g *Guard) Run(protected func() error) error {
	if g.Resolve() != StateAuthorized {
		return ErrNotAuthenticated
	}
	return protected()
}
