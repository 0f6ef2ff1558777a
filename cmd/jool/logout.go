package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cerrar la sesión actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Logout()
			fmt.Println("Sesión cerrada.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar el usuario de la sesión actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				user := a.session.CurrentUser()
				fmt.Printf("%s (@%s)\n", user.FullName(), user.Username())
				fmt.Printf("Correo: %s\n", user.Email)
				if user.Phone != nil {
					fmt.Printf("Teléfono: %s\n", *user.Phone)
				}
				return nil
			})
		},
	}
}
