package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/jool/internal/model"
)

// Client はJOOLのリソースエンドポイント（質問・回答・ハッシュタグ）を呼び出す
// HTTPクライアント。全リクエストはTransport経由で認可される。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient はClientを生成する。
// transportには認可・401処理を担うTransportを渡す。
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// doJSON はJSONリクエストを送信し、レスポンスをoutにデコードする。
// outがnilの場合はボディを捨てる。サーバーが空ボディの2xxを返す場合は
// デコードせずに成功として扱う。
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewTransportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Transportがすでにセッション破棄と遷移を行っている。
		// 呼び出し元のエラー処理用に失敗として返す。
		return model.NewAuthenticationFailedError("La sesión ha expirado. Inicie sesión nuevamente.")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api request %s %s failed with status %d: %s",
			method, path, resp.StatusCode, serverMessageOrBody(respBody))
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}
	return nil
}

// serverMessageOrBody はエラーボディからdetail/messageを取り出す。
// 構造化されていない場合はボディをそのまま返す。
func serverMessageOrBody(body []byte) string {
	var errBody struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil {
		if errBody.Detail != "" {
			return errBody.Detail
		}
		if errBody.Message != "" {
			return errBody.Message
		}
	}
	return string(body)
}
