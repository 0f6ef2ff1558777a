// Package auth は認証フローとセッション管理を提供する。
package auth

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

// APIエンドポイントのパス。
const (
	loginPath          = "/Auth/login"
	registerPath       = "/Auth/register"
	microsoftLoginPath = "/Auth/login-microsoft"
)

// Client はJOOL APIの認証エンドポイントを呼び出すHTTPクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient はClientを生成する。
// timeoutはクライアント側の固定タイムアウト。超過はトランスポートエラーとして扱う。
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// loginRequest はログインエンドポイントのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse はログインエンドポイントのレスポンスボディ。
type loginResponse struct {
	Token string               `json:"token"`
	User  *model.RawUserRecord `json:"user"`
}

// apiErrorBody はAPIのエラーレスポンスで使われるボディ。
// サーバー実装によりmessageまたはdetailのどちらかで返る。
type apiErrorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Login はメール・パスワードでログインエンドポイントを呼び出す。
// 成功時はトークンと未正規化のユーザーレコードを返す。
// レスポンスにトークンまたはユーザーのどちらかが欠けている場合は
// InvalidServerResponseとして失敗する。
func (c *Client) Login(ctx context.Context, email, password string) (string, *model.RawUserRecord, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, model.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, model.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// サーバーのメッセージがあればそのまま表示する
		return "", nil, model.NewAuthenticationFailedError(serverMessage(respBody))
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return "", nil, model.NewInvalidServerResponseError("unparseable login response body")
	}
	if loginResp.Token == "" {
		return "", nil, model.NewInvalidServerResponseError("missing token in login response")
	}
	if loginResp.User == nil {
		return "", nil, model.NewInvalidServerResponseError("missing user in login response")
	}

	return loginResp.Token, loginResp.User, nil
}

// Register は新規ユーザー登録エンドポイントを呼び出す。
// バリデーションエラーはサーバーのレスポンスをそのまま含めて返す。
// サーバーが空ボディの2xxを返す場合があるため、その際は(nil, nil)を返す。
func (c *Client) Register(ctx context.Context, data model.RegistrationData) (*model.RawUserRecord, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+registerPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("registration failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}

	var user model.RawUserRecord
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, model.NewInvalidServerResponseError("unparseable registration response body")
	}
	return &user, nil
}

// microsoftLoginResponse はMicrosoftログイン開始エンドポイントのレスポンス。
type microsoftLoginResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// MicrosoftRedirectURL はMicrosoft SSOのリダイレクトURLをAPIから取得する。
func (c *Client) MicrosoftRedirectURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+microsoftLoginPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create microsoft login request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", model.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("microsoft login request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var msResp microsoftLoginResponse
	if err := json.Unmarshal(respBody, &msResp); err != nil {
		return "", model.NewInvalidServerResponseError("unparseable microsoft login response body")
	}
	if msResp.RedirectURL == "" {
		return "", model.NewInvalidServerResponseError("missing redirect_url in microsoft login response")
	}

	return msResp.RedirectURL, nil
}

// serverMessage はエラーレスポンスボディからユーザー向けメッセージを取り出す。
// メッセージが取り出せない場合は空文字列を返す。
func serverMessage(body []byte) string {
	var errBody apiErrorBody
	if err := json.Unmarshal(body, &errBody); err != nil {
		return ""
	}
	if errBody.Message != "" {
		return errBody.Message
	}
	return errBody.Detail
}
