package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hitoshi/jool/internal/model"
)

func responsesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses",
		Short: "Publicar y eliminar respuestas",
	}
	cmd.AddCommand(responsesAddCmd(), responsesRmCmd())
	return cmd
}

func responsesAddCmd() *cobra.Command {
	var questionID int
	var content string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Responder a una pregunta",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				created, err := a.resources.CreateResponse(cmd.Context(), model.Response{
					QuestionID: questionID,
					UserID:     a.session.CurrentUser().ID,
					Content:    content,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Respuesta publicada con id %d.\n", created.ID)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&questionID, "question", "q", 0, "ID de la pregunta")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Contenido de la respuesta")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func responsesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Eliminar una respuesta propia",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id de respuesta inválido: %s", args[0])
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				if err := a.resources.DeleteResponse(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Printf("Respuesta %d eliminada.\n", id)
				return nil
			})
		},
	}
}
