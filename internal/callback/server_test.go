package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// startTestServer は空きポートでキャプチャサーバーを起動する。
func startTestServer(t *testing.T) *Server {
	t.Helper()
	s := New("0", nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

// postCapture はキャプチャエンドポイントへ転送リクエストを送る。
func postCapture(t *testing.T, s *Server, state, fragment string) *http.Response {
	t.Helper()
	base := strings.TrimSuffix(s.CallbackURL(), "/auth/callback")
	body, err := json.Marshal(map[string]string{"state": state, "fragment": fragment})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	resp, err := http.Post(base+"/auth/capture", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// TestServer_CallbackURL_UsesBoundPort はポート"0"指定時にCallbackURLが
// 実際にリッスン中のポートを返すことを検証する。
func TestServer_CallbackURL_UsesBoundPort(t *testing.T) {
	s := startTestServer(t)

	url := s.CallbackURL()
	if strings.Contains(url, ":0/") {
		t.Errorf("CallbackURL() = %q, should use the bound port", url)
	}
	if !strings.HasPrefix(url, "http://127.0.0.1:") || !strings.HasSuffix(url, "/auth/callback") {
		t.Errorf("CallbackURL() = %q", url)
	}
}

// TestServer_ServesCapturePage はコールバックページが配信され、このフローの
// state値が埋め込まれていることを検証する。
func TestServer_ServesCapturePage(t *testing.T) {
	s := startTestServer(t)

	resp, err := http.Get(s.CallbackURL())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !strings.Contains(string(body), s.state) {
		t.Error("capture page should embed the flow state")
	}
	if !strings.Contains(string(body), "/auth/capture") {
		t.Error("capture page should post to the capture endpoint")
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

// TestServer_Capture はフラグメントの転送がAwaitに引き渡されることを検証する。
func TestServer_Capture(t *testing.T) {
	s := startTestServer(t)

	resp := postCapture(t, s, s.state, `#{"token":{}}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("StatusCode = %d, want 204", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	fragment, err := s.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if fragment != `#{"token":{}}` {
		t.Errorf("fragment = %q", fragment)
	}
}

// TestServer_Capture_InvalidState は不正なstateの転送が拒否されることを検証する。
func TestServer_Capture_InvalidState(t *testing.T) {
	s := startTestServer(t)

	resp := postCapture(t, s, "estado-ajeno", "#fragment")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", resp.StatusCode)
	}
}

// TestServer_Capture_BadBody は解読不能なボディが拒否されることを検証する。
func TestServer_Capture_BadBody(t *testing.T) {
	s := startTestServer(t)
	base := strings.TrimSuffix(s.CallbackURL(), "/auth/callback")

	resp, err := http.Post(base+"/auth/capture", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
	}
}

// TestServer_Capture_SecondFragmentRejected は最初のフラグメントのみ採用され、
// 2回目の転送が拒否されることを検証する。
func TestServer_Capture_SecondFragmentRejected(t *testing.T) {
	s := startTestServer(t)

	first := postCapture(t, s, s.state, "#primero")
	if first.StatusCode != http.StatusNoContent {
		t.Fatalf("first StatusCode = %d, want 204", first.StatusCode)
	}

	second := postCapture(t, s, s.state, "#segundo")
	if second.StatusCode != http.StatusConflict {
		t.Errorf("second StatusCode = %d, want 409", second.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	fragment, err := s.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if fragment != "#primero" {
		t.Errorf("fragment = %q, want the first capture", fragment)
	}
}

// TestServer_Capture_RateLimited はバースト上限を超えた転送が拒否されることを検証する。
func TestServer_Capture_RateLimited(t *testing.T) {
	s := startTestServer(t)

	var got429 bool
	for i := 0; i < 10; i++ {
		resp := postCapture(t, s, "estado-ajeno", fmt.Sprintf("#%d", i))
		if resp.StatusCode == http.StatusTooManyRequests {
			got429 = true
			break
		}
	}
	if !got429 {
		t.Error("rapid captures should eventually be rate limited")
	}
}

// TestServer_Await_ContextCanceled はコンテキストのキャンセルでAwaitが
// 打ち切られることを検証する。
func TestServer_Await_ContextCanceled(t *testing.T) {
	s := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := s.Await(ctx); err == nil {
		t.Error("Await should fail when the context expires")
	}
}
