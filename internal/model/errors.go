// Package model はドメインモデルを定義する。
package model

import "fmt"

// AuthError は認証サブシステムの統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type AuthError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（ユーザー向け、スペイン語）
	Category string // カテゴリ: transport, auth, policy, storage
	Action   string // ユーザー向け対処方法
	Err      error  // 元エラー（存在する場合）
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は元エラーを返す。errors.Is / errors.As での検査に使用する。
func (e *AuthError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeTransport               = "TRANSPORT_ERROR"
	ErrCodeAuthenticationFailed    = "AUTHENTICATION_FAILED"
	ErrCodeInvalidServerResponse   = "INVALID_SERVER_RESPONSE"
	ErrCodeMalformedRedirectPayload = "MALFORMED_REDIRECT_PAYLOAD"
	ErrCodeUnauthorizedDomain      = "UNAUTHORIZED_DOMAIN"
	ErrCodeStorageWriteFailure     = "STORAGE_WRITE_FAILURE"
)

// NewTransportError はAPIへの到達失敗（ネットワーク障害・タイムアウト）エラーを生成する。
// ユーザーによる再試行で回復可能。自動リトライは行わない。
func NewTransportError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeTransport,
		Message:  "No se pudo conectar con el servidor.",
		Category: "transport",
		Action:   "Verifique su conexión a internet e intente nuevamente.",
		Err:      err,
	}
}

// NewAuthenticationFailedError は認証情報不正エラーを生成する。
// serverMessageが空でない場合はサーバーのメッセージをそのまま表示する。
func NewAuthenticationFailedError(serverMessage string) *AuthError {
	msg := serverMessage
	if msg == "" {
		msg = "Error al iniciar sesión. Verifique sus credenciales."
	}
	return &AuthError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  msg,
		Category: "auth",
		Action:   "Verifique su correo y contraseña e intente nuevamente.",
	}
}

// NewInvalidServerResponseError はトランスポートレベルでは成功したが
// レスポンスボディに必須フィールドが欠けている場合のエラーを生成する。
func NewInvalidServerResponseError(reason string) *AuthError {
	return &AuthError{
		Code:     ErrCodeInvalidServerResponse,
		Message:  "Respuesta inválida del servidor.",
		Category: "auth",
		Action:   "Intente nuevamente más tarde.",
		Err:      fmt.Errorf("invalid server response: %s", reason),
	}
}

// NewMalformedRedirectPayloadError はSSOフラグメントが解読不能または
// 必須トークンサブフィールドを欠く場合のエラーを生成する。
// このエラーは呼び出し元へは伝播せず、「セッション未確立」としてログのみに残す。
func NewMalformedRedirectPayloadError(err error) *AuthError {
	return &AuthError{
		Code:     ErrCodeMalformedRedirectPayload,
		Message:  "Datos de autenticación ilegibles.",
		Category: "auth",
		Action:   "Inicie sesión nuevamente.",
		Err:      err,
	}
}

// NewUnauthorizedDomainError はメールが機関ドメインポリシーに合致しない場合の
// エラーを生成する。意図的なポリシー拒否であり、他の失敗と区別して表示する。
func NewUnauthorizedDomainError(email, requiredDomain string) *AuthError {
	return &AuthError{
		Code:     ErrCodeUnauthorizedDomain,
		Message: fmt.Sprintf(
			"Acceso denegado: El correo %s no pertenece al dominio %s. Solo se permite acceso con correos institucionales.",
			email, requiredDomain,
		),
		Category: "policy",
		Action:   fmt.Sprintf("Inicie sesión con su correo institucional (%s).", requiredDomain),
	}
}

// NewStorageWriteFailureError は永続化レイヤーの書き込み失敗エラーを生成する。
// 中途半端なセッションのまま続行せず、このエラーで失敗させる。
func NewStorageWriteFailureError() *AuthError {
	return &AuthError{
		Code:     ErrCodeStorageWriteFailure,
		Message:  "No se pudo guardar su sesión.",
		Category: "storage",
		Action:   "Intente nuevamente.",
	}
}
