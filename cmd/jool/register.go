package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hitoshi/jool/internal/model"
)

func registerCmd() *cobra.Command {
	var data model.RegistrationData
	var phone string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Registrar una cuenta nueva",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if phone != "" {
				data.Phone = &phone
			}

			profile, err := a.session.Register(cmd.Context(), data)
			if err != nil {
				return describeAuthError(err)
			}

			if profile != nil {
				fmt.Printf("Cuenta creada para %s.\n", profile.Email)
			} else {
				fmt.Println("Cuenta creada.")
			}
			fmt.Println("Ahora puede iniciar sesión: jool login")
			return nil
		},
	}

	cmd.Flags().StringVar(&data.FirstName, "first-name", "", "Nombre")
	cmd.Flags().StringVar(&data.LastName, "last-name", "", "Apellidos")
	cmd.Flags().StringVarP(&data.Email, "email", "e", "", "Correo institucional")
	cmd.Flags().StringVarP(&data.Password, "password", "p", "", "Contraseña")
	cmd.Flags().StringVar(&phone, "phone", "", "Teléfono (opcional)")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
