package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func hashtagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashtags",
		Short: "Consultar y crear hashtags",
	}
	cmd.AddCommand(hashtagsListCmd(), hashtagsNewCmd())
	return cmd
}

func hashtagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Listar los hashtags disponibles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				hashtags, err := a.resources.ListHashtags(cmd.Context())
				if err != nil {
					return err
				}
				if len(hashtags) == 0 {
					fmt.Println("No hay hashtags.")
					return nil
				}
				for _, h := range hashtags {
					fmt.Printf("#%s\n", h.Name)
				}
				return nil
			})
		},
	}
}

func hashtagsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <nombre>",
		Short: "Crear un hashtag nuevo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				created, err := a.resources.CreateHashtag(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Hashtag #%s creado.\n", created.Name)
				return nil
			})
		},
	}
}
