package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jool/internal/api"
	"github.com/hitoshi/jool/internal/auth"
	"github.com/hitoshi/jool/internal/config"
	"github.com/hitoshi/jool/internal/guard"
	"github.com/hitoshi/jool/internal/logger"
	"github.com/hitoshi/jool/internal/metrics"
	"github.com/hitoshi/jool/internal/security"
	"github.com/hitoshi/jool/internal/store"
)

// loginURL はガードと401インターセプタが遷移するログインの論理URL。
const loginURL = "/login"

// app はCLIコマンドが使用する依存一式。コマンド実行ごとに組み立てる。
type app struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	collector *metrics.Collector
	nav       *browserNavigator
	session   *auth.Service
	resources *api.Client
	sanitizer security.DisplaySanitizerService
}

// newApp は設定の読み込みから各コンポーネントの組み立てまでを行う。
func newApp() (*app, error) {
	logger.SetupDefault(nil)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	nav := &browserNavigator{}

	sessionStore := store.NewSessionStore(
		store.NewFileCookieStore(cfg.SessionDir),
		store.NewFileKVStore(cfg.SessionDir),
		cfg.CookieSecure,
	)

	authClient := auth.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	session := auth.NewService(
		authClient,
		sessionStore,
		nav,
		security.NewRedirectGuard(),
		collector,
		auth.ServiceConfig{
			AllowedEmailDomain: cfg.AllowedEmailDomain,
			SessionTTL:         cfg.SessionTTL,
			LoginRatePerMin:    cfg.LoginRatePerMin,
		},
	)

	transport := api.NewTransport(nil, session, session, nav, collector, loginURL)
	resources := api.NewClient(cfg.APIBaseURL, transport, cfg.HTTPTimeout)

	return &app{
		cfg:       cfg,
		registry:  registry,
		collector: collector,
		nav:       nav,
		session:   session,
		resources: resources,
		sanitizer: security.NewDisplaySanitizer(),
	}, nil
}

// newGuard は保護されたコマンド用のガードを生成する。
func (a *app) newGuard() *guard.Guard {
	return guard.New(a.session, a.nav, loginURL)
}

// runProtected はガードを通過した場合のみfnを実行する。
// 未認証の場合はログインを促すエラーを返す。
func (a *app) runProtected(fn func() error) error {
	err := a.newGuard().Run(fn)
	if err == guard.ErrNotAuthenticated {
		return fmt.Errorf("debe iniciar sesión primero: jool login")
	}
	return err
}
