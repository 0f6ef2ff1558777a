package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/jool/internal/metrics"
	"github.com/hitoshi/jool/internal/model"
	"github.com/hitoshi/jool/internal/store"
)

// CredentialAPI は認証エンドポイントの呼び出しに必要なインターフェース。
// Clientの部分集合として定義する。
type CredentialAPI interface {
	Login(ctx context.Context, email, password string) (string, *model.RawUserRecord, error)
	Register(ctx context.Context, data model.RegistrationData) (*model.RawUserRecord, error)
	MicrosoftRedirectURL(ctx context.Context) (string, error)
}

// SessionPersistence はセッション状態の永続化に必要なインターフェース。
// store.SessionStoreが実装する。
type SessionPersistence interface {
	SaveToken(token string, expiry time.Time)
	ReadToken() (string, bool)
	ReadExpiry() (time.Time, bool)
	SaveProfile(profile *model.UserProfile) bool
	ReadProfile() *model.UserProfile
	ClearAll()
}

// Navigator は画面遷移の抽象。ブラウザ版のwindow.locationとhistoryに相当する。
type Navigator interface {
	// Navigate は完全なナビゲーション（外部ブラウザでのURLオープン）を行う。
	Navigate(url string) error
	// Replace は履歴エントリを残さずに可視URLを置き換える。
	Replace(url string)
}

// RedirectGuard はSSOリダイレクトURLの事前検証に必要なインターフェース。
// security.RedirectGuardServiceの部分集合として定義する。
type RedirectGuard interface {
	ValidateRedirectURL(rawURL string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	AllowedEmailDomain string        // SSOで許可する機関メールドメイン（@付きサフィックス）
	SessionTTL         time.Duration // パスワードログイン時のクライアント側有効期間
	LoginRatePerMin    int           // ログイン試行のレート（req/min）
}

// Service は認証フローとセッション照会の単一の窓口。
// ルートガード・ナビゲーション・APIコールはすべてこのサービスを参照する。
type Service struct {
	api     CredentialAPI
	store   SessionPersistence
	nav     Navigator
	guard   RedirectGuard
	metrics metrics.MetricsCollector
	limiter *rate.Limiter
	config  ServiceConfig

	// テストで時刻を固定するためのフック
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	api CredentialAPI,
	sessionStore SessionPersistence,
	nav Navigator,
	guard RedirectGuard,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	perMin := config.LoginRatePerMin
	if perMin <= 0 {
		perMin = 10
	}
	return &Service{
		api:     api,
		store:   sessionStore,
		nav:     nav,
		guard:   guard,
		metrics: collector,
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60.0), perMin),
		config:  config,
		now:     time.Now,
	}
}

// Login はメール・パスワードによる直接ログインを行い、セッションを確立する。
//
// サーバーはこのパスでは有効期限を返さないため、クライアント側で現在時刻から
// SessionTTL（既定24時間）後を有効期限として計算する。SSOパスとの非対称は
// 意図的に保存している。
// 画面遷移は呼び出し元の責務とする。
func (s *Service) Login(ctx context.Context, email, password string) (*model.SessionBundle, error) {
	// ログイン試行のスロットリング。コンテキストのタイムアウト内で待つ。
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, model.NewTransportError(err)
	}

	token, raw, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.metrics.RecordLoginFailure(metrics.MethodPassword, failureReason(err))
		return nil, err
	}

	profile := raw.Canonical()
	if !profile.Valid() {
		s.metrics.RecordLoginFailure(metrics.MethodPassword, "invalid_user_record")
		return nil, model.NewInvalidServerResponseError("user record has no identifier")
	}

	expiry := s.now().Add(s.config.SessionTTL)
	if err := s.persistSession(token, expiry, &profile); err != nil {
		s.metrics.RecordLoginFailure(metrics.MethodPassword, "storage_write_failure")
		return nil, err
	}

	s.metrics.RecordLoginSuccess(metrics.MethodPassword)
	slog.Info("user logged in",
		slog.String("method", metrics.MethodPassword),
		slog.String("user_id", profile.ID),
	)

	return &model.SessionBundle{Token: token, Expiry: expiry, Profile: profile}, nil
}

// Register は新規ユーザーを登録する。セッションは確立しない。
// サーバーが空ボディを返した場合は(nil, nil)を返す。
func (s *Service) Register(ctx context.Context, data model.RegistrationData) (*model.UserProfile, error) {
	raw, err := s.api.Register(ctx, data)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	profile := raw.Canonical()
	slog.Info("user registered", slog.String("email", data.Email))
	return &profile, nil
}

// BeginMicrosoftLogin はMicrosoft SSOフローを開始する。
// APIからリダイレクトURLを取得・検証し、ブラウザを遷移させて戻らない想定の
// fire-and-forget操作。URL取得の失敗は呼び出し元へ伝播させ、表示を委ねる。
func (s *Service) BeginMicrosoftLogin(ctx context.Context) error {
	redirectURL, err := s.api.MicrosoftRedirectURL(ctx)
	if err != nil {
		s.metrics.RecordLoginFailure(metrics.MethodMicrosoft, failureReason(err))
		return err
	}

	if err := s.guard.ValidateRedirectURL(redirectURL); err != nil {
		s.metrics.RecordLoginFailure(metrics.MethodMicrosoft, "unsafe_redirect_url")
		return fmt.Errorf("unsafe redirect URL from server: %w", err)
	}

	slog.Info("redirecting to identity provider")
	return s.nav.Navigate(redirectURL)
}

// redirectPayload はSSOリダイレクト後のURLフラグメントに載るペイロード。
type redirectPayload struct {
	Token struct {
		AccessToken string `json:"accessToken"`
		ExpiresAt   string `json:"expiresAt"`
	} `json:"token"`
	UserID    model.FlexibleID `json:"user_id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	IsActive  *bool            `json:"is_active"`
	HasImage  *bool            `json:"has_image"`
	Phone     *string          `json:"phone"`
}

// userRecord はペイロードを未正規化ユーザーレコードに変換する。
func (p redirectPayload) userRecord() model.RawUserRecord {
	return model.RawUserRecord{
		UserID:    p.UserID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsActive:  p.IsActive,
		HasImage:  p.HasImage,
		Phone:     p.Phone,
	}
}

// ProcessRedirectFragment はSSOリダイレクト後のURLフラグメントを処理し、
// セッションを確立する。関連ページのロード時に無条件に呼んで安全なように、
// フラグメント不在は(nil, nil)を返す（エラーではない）。
//
// 実行順序は厳密に パース → シェイプ検証 → ドメインポリシー検査 →
// トークン永続化 → プロフィール永続化 とする。拒否された認証情報を
// 永続化してはならないため、永続化はドメイン検査の成功より前に行わない。
//
// フラグメントが存在した場合、成功・拒否・不正を問わず可視URLから必ず除去する。
// フラグメントにはベアラートークンが含まれ、履歴に残してはならない。
func (s *Service) ProcessRedirectFragment(rawURL string) (*model.UserProfile, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Fragment == "" {
		return nil, nil
	}

	// 以降のすべての経路でフラグメントを可視URLから除去する
	stripped := *u
	stripped.Fragment = ""
	stripped.RawFragment = ""
	defer s.nav.Replace(stripped.String())

	// 1. フラグメントをJSONとしてパース（url.Parseがパーセントデコード済み）
	var payload redirectPayload
	if err := json.Unmarshal([]byte(u.Fragment), &payload); err != nil {
		s.warnMalformed(model.NewMalformedRedirectPayloadError(err))
		return nil, nil
	}

	// 2. シェイプ検証: トークンサブフィールドが両方そろっていること
	if payload.Token.AccessToken == "" || payload.Token.ExpiresAt == "" {
		s.warnMalformed(model.NewMalformedRedirectPayloadError(
			errors.New("missing token sub-fields in redirect payload")))
		return nil, nil
	}
	expiry, err := time.Parse(time.RFC3339, payload.Token.ExpiresAt)
	if err != nil {
		s.warnMalformed(model.NewMalformedRedirectPayloadError(err))
		return nil, nil
	}

	// 3. ドメインポリシー検査。IdPは機関外のアカウントも認証できるため、
	//    ここでの許可リスト検査が唯一のゲートとなる。
	if !s.isInstitutionalEmail(payload.Email) {
		s.metrics.RecordLoginFailure(metrics.MethodMicrosoft, "unauthorized_domain")
		slog.Warn("sso login rejected by domain policy", slog.String("email", payload.Email))
		return nil, model.NewUnauthorizedDomainError(payload.Email, s.config.AllowedEmailDomain)
	}

	// 4. 正規化。識別子が両規約で欠落したレコードは不正ペイロードとして扱い、
	//    セッションを確立しない。
	profile := payload.userRecord().Canonical()
	if !profile.Valid() {
		s.warnMalformed(model.NewMalformedRedirectPayloadError(
			errors.New("user record in redirect payload has no identifier")))
		return nil, nil
	}

	// 5. 永続化（トークン → プロフィールの順）
	if err := s.persistSession(payload.Token.AccessToken, expiry, &profile); err != nil {
		s.metrics.RecordLoginFailure(metrics.MethodMicrosoft, "storage_write_failure")
		return nil, err
	}

	s.metrics.RecordLoginSuccess(metrics.MethodMicrosoft)
	slog.Info("user logged in",
		slog.String("method", metrics.MethodMicrosoft),
		slog.String("user_id", profile.ID),
	)

	return &profile, nil
}

// isInstitutionalEmail はメールが機関ドメインに属するかを検証する（大文字小文字を無視）。
func (s *Service) isInstitutionalEmail(email string) bool {
	if email == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(s.config.AllowedEmailDomain))
}

// persistSession はトークンとプロフィールを順に永続化する。
// SaveTokenはエラーを投げないため、トークンと有効期限の両レコードを読み戻しで
// 検証する。どれか1つでも書き込めなかった場合はClearAllでロールバックして失敗を
// 返し、中途半端なセッションを残さない。
func (s *Service) persistSession(token string, expiry time.Time, profile *model.UserProfile) error {
	s.store.SaveToken(token, expiry)
	if _, ok := s.store.ReadToken(); !ok {
		s.store.ClearAll()
		return model.NewStorageWriteFailureError()
	}
	if _, ok := s.store.ReadExpiry(); !ok {
		s.store.ClearAll()
		return model.NewStorageWriteFailureError()
	}
	if !s.store.SaveProfile(profile) {
		s.store.ClearAll()
		return model.NewStorageWriteFailureError()
	}
	return nil
}

// IsAuthenticated は認証済みセッションが存在するかを返す。
// トークンが存在し、有効期限が現在時刻より厳密に後で、かつプロフィールが
// 存在する場合のみtrue。どれが欠けてもエラーは投げずfalseを返す。
func (s *Service) IsAuthenticated() bool {
	if _, ok := s.store.ReadToken(); !ok {
		return false
	}
	expiry, ok := s.store.ReadExpiry()
	if !ok {
		return false
	}
	if !expiry.After(s.now()) {
		return false
	}
	return s.store.ReadProfile() != nil
}

// CurrentUser は現在のユーザープロフィールを返す。不在の場合はnil。
func (s *Service) CurrentUser() *model.UserProfile {
	return s.store.ReadProfile()
}

// Token は現在のトークンを返す。不在の場合はfalse。
func (s *Service) Token() (string, bool) {
	return s.store.ReadToken()
}

// Logout はトークン・有効期限・プロフィールをすべて破棄する。
func (s *Service) Logout() {
	s.store.ClearAll()
	slog.Info("user logged out")
}

// warnMalformed は解読不能なリダイレクトペイロードをログに残す。
// 無関係なフラグメント付きページロードでも起こりうるため、エラーとしては扱わない。
func (s *Service) warnMalformed(authErr *model.AuthError) {
	slog.Warn("unusable redirect fragment",
		slog.String("code", authErr.Code),
		slog.String("error", authErr.Unwrap().Error()),
	)
}

// failureReason はメトリクスのreasonラベル用にエラーを分類する。
func failureReason(err error) string {
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		return strings.ToLower(authErr.Code)
	}
	return "error"
}

// compile-time interface checks
var _ CredentialAPI = (*Client)(nil)
var _ SessionPersistence = (*store.SessionStore)(nil)
