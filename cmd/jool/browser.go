package main

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// browserNavigator はauth.Navigatorのデスクトップ実装。
// Navigateはシステムの既定ブラウザでURLを開く。
// ReplaceはCLIに可視URLが存在しないため、論理遷移としてログに残すのみ。
// SSOフラグメントの実際の履歴除去はキャプチャページ側のreplaceStateが行う。
type browserNavigator struct{}

// Navigate は既定ブラウザでURLを開く。
func (n *browserNavigator) Navigate(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// Replace は論理遷移を記録する。
func (n *browserNavigator) Replace(url string) {
	slog.Debug("navigation replace", slog.String("url", url))
}
