// Command jool はJOOLフォーラムのコマンドラインクライアント。
// パスワードまたはMicrosoft SSOでログインし、取得したセッションで
// 質問・回答・ハッシュタグのAPIを呼び出す。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jool",
		Short: "Cliente de línea de comandos para el foro JOOL",
		Long: `jool es el cliente de línea de comandos del foro de preguntas y
respuestas JOOL del Tecnológico de Mérida.

Inicie sesión con su correo institucional o mediante Microsoft SSO,
y consulte, publique y responda preguntas desde la terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		registerCmd(),
		questionsCmd(),
		responsesCmd(),
		hashtagsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
