// Package callback はSSOリダイレクト結果を受け取るループバックHTTPサーバーを提供する。
//
// IdPからの認証結果はURLフラグメントで返されるが、フラグメントはHTTPリクエストで
// サーバーに送信されない。そのためコールバックページとして小さなキャプチャページを
// 配信し、そのスクリプトがlocation.hashを読み取って可視URLから除去したうえで
// ループバックサーバーへPOSTする。ネイティブアプリのSSOで使われる標準的な
// ループバックキャプチャの構成。
package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// capturePage はブラウザに配信するキャプチャページ。
// フラグメントの除去（history.replaceState）は転送より先に行い、
// トークンを含むフラグメントが履歴に残らないようにする。
const capturePage = `<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>JOOL</title></head>
<body>
<p id="msg">Completando autenticación...</p>
<script>
(function () {
  var fragment = window.location.hash;
  history.replaceState(null, "", window.location.pathname);
  fetch("/auth/capture", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ state: "%s", fragment: fragment })
  }).then(function (res) {
    document.getElementById("msg").textContent = res.ok
      ? "Autenticación recibida. Puede cerrar esta ventana."
      : "Error procesando la autenticación. Vuelva a la terminal e intente nuevamente.";
  }).catch(function () {
    document.getElementById("msg").textContent =
      "Error procesando la autenticación. Vuelva a la terminal e intente nuevamente.";
  });
})();
</script>
</body>
</html>
`

// captureRequest はキャプチャページから送られるリクエストボディ。
type captureRequest struct {
	State    string `json:"state"`
	Fragment string `json:"fragment"`
}

// Server はSSOコールバックのループバックHTTPサーバー。
// 1回のログインフローごとに生成し、最初に受信したフラグメントを引き渡して終了する。
type Server struct {
	port       string
	state      string
	limiter    *rate.Limiter
	fragments  chan string
	httpServer *http.Server
	listener   net.Listener
}

// New はServerを生成する。
// metricsHandlerが渡された場合は/metricsにマウントする（Prometheusスクレイプ用）。
func New(port string, metricsHandler http.Handler) *Server {
	s := &Server{
		port: port,
		// stateはフローごとのワンタイム値。ループバックポートへ勝手に
		// POSTしてくる他プロセスからの注入を防ぐ。
		state:     uuid.New().String(),
		limiter:   rate.NewLimiter(rate.Limit(1), 5),
		fragments: make(chan string, 1),
	}

	r := chi.NewRouter()
	r.Get("/auth/callback", s.handleCallbackPage)
	r.Post("/auth/capture", s.handleCapture)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	s.httpServer = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// CallbackURL はIdPのリダイレクト先として登録されるURLを返す。
// Start後はリッスン中の実ポートを使用する（ポート"0"指定時のため）。
func (s *Server) CallbackURL() string {
	port := s.port
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			port = fmt.Sprintf("%d", addr.Port)
		}
	}
	return fmt.Sprintf("http://127.0.0.1:%s/auth/callback", port)
}

// Start はループバックアドレスでリッスンを開始する。
// ポートが使用中の場合はエラーを返す。
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on callback port %s: %w", s.port, err)
	}
	s.listener = ln

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("callback server failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("callback server started", slog.String("url", s.CallbackURL()))
	return nil
}

// Await は最初に受信したフラグメント（先頭の#を含む）を返す。
// コンテキストのキャンセルまたはタイムアウトで打ち切る。
func (s *Server) Await(ctx context.Context) (string, error) {
	select {
	case fragment := <-s.fragments:
		return fragment, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for sso callback: %w", ctx.Err())
	}
}

// Shutdown はサーバーを停止する。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleCallbackPage はキャプチャページを配信する。
// GET /auth/callback
func (s *Server) handleCallbackPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, capturePage, s.state)
}

// handleCapture はキャプチャページから転送されたフラグメントを受け取る。
// POST /auth/capture
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// stateの検証。このフローのキャプチャページ以外からの転送は拒否する。
	if req.State != s.state {
		slog.Warn("capture state mismatch")
		http.Error(w, "invalid state", http.StatusForbidden)
		return
	}

	// 最初のフラグメントのみ採用する
	select {
	case s.fragments <- req.Fragment:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "already captured", http.StatusConflict)
	}
}
