// Package logger はJSON構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup は指定レベルのJSON構造化ログ出力のslog.Loggerを生成して返す。
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerがnilの場合はos.Stderrに出力する。CLIの標準出力はコマンド結果用に
// 確保するため、ログは標準エラーに流す。
// ログレベルは環境変数JOOL_LOG_LEVEL（debug/info/warn/error）で制御する。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(Setup(w, levelFromEnv()))
}

// levelFromEnv は環境変数からログレベルを解決する。未設定・不正値はInfo。
func levelFromEnv() slog.Level {
	switch os.Getenv("JOOL_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
