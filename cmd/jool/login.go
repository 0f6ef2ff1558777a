package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hitoshi/jool/internal/callback"
	"github.com/hitoshi/jool/internal/metrics"
	"github.com/hitoshi/jool/internal/model"
)

// ssoTimeout はブラウザでのSSO完了を待つ上限。
const ssoTimeout = 5 * time.Minute

func loginCmd() *cobra.Command {
	var email, password string
	var microsoft bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión en JOOL",
		Long: `Inicia sesión con correo y contraseña, o con --microsoft mediante
el inicio de sesión institucional de Microsoft en el navegador.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if microsoft {
				return runMicrosoftLogin(cmd.Context(), a)
			}
			return runPasswordLogin(cmd.Context(), a, email, password)
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Correo institucional")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Contraseña (se pedirá si se omite)")
	cmd.Flags().BoolVarP(&microsoft, "microsoft", "m", false, "Iniciar sesión con Microsoft SSO")

	return cmd
}

// runPasswordLogin はメール・パスワードでログインする。
func runPasswordLogin(ctx context.Context, a *app, email, password string) error {
	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		fmt.Print("Correo: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Print("Contraseña: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	bundle, err := a.session.Login(ctx, email, password)
	if err != nil {
		return describeAuthError(err)
	}

	fmt.Printf("Sesión iniciada como %s (%s).\n", bundle.Profile.FullName(), bundle.Profile.Email)
	fmt.Printf("La sesión expira el %s.\n", bundle.Expiry.Local().Format("2006-01-02 15:04"))
	return nil
}

// runMicrosoftLogin はブラウザ経由のSSOフローを実行する。
// ループバックサーバーを起動し、ブラウザをIdPへ遷移させ、
// コールバックで受信したフラグメントを処理してセッションを確立する。
func runMicrosoftLogin(ctx context.Context, a *app) error {
	server := callback.New(a.cfg.CallbackPort, metrics.Handler(a.registry))
	if err := server.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := a.session.BeginMicrosoftLogin(ctx); err != nil {
		return describeAuthError(err)
	}

	fmt.Println("Se abrió el navegador para iniciar sesión con Microsoft.")
	fmt.Println("Esperando la autenticación...")

	waitCtx, cancel := context.WithTimeout(ctx, ssoTimeout)
	defer cancel()
	fragment, err := server.Await(waitCtx)
	if err != nil {
		return err
	}

	// 受信したフラグメントをコールバックURLに付けて通常のフラグメント処理に通す
	profile, err := a.session.ProcessRedirectFragment(server.CallbackURL() + fragment)
	if err != nil {
		return describeAuthError(err)
	}
	if profile == nil {
		return fmt.Errorf("error procesando la autenticación, intente nuevamente")
	}

	fmt.Printf("Sesión iniciada como %s (%s).\n", profile.FullName(), profile.Email)
	return nil
}

// describeAuthError はAuthErrorの対処方法を補足したエラーを返す。
func describeAuthError(err error) error {
	var authErr *model.AuthError
	if errors.As(err, &authErr) && authErr.Action != "" {
		return fmt.Errorf("%s %s", authErr.Message, authErr.Action)
	}
	return err
}
