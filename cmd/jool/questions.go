package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hitoshi/jool/internal/model"
)

func questionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Consultar y publicar preguntas",
	}
	cmd.AddCommand(
		questionsListCmd(),
		questionsShowCmd(),
		questionsNewCmd(),
		questionsRmCmd(),
	)
	return cmd
}

func questionsListCmd() *cobra.Command {
	var hashtag, userID string
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar preguntas del feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				ctx := cmd.Context()
				var questions []model.Question
				switch {
				case hashtag != "":
					questions, err = a.resources.QuestionsByHashtag(ctx, strings.TrimPrefix(hashtag, "#"))
				case mine:
					questions, err = a.resources.QuestionsByUser(ctx, a.session.CurrentUser().ID)
				case userID != "":
					questions, err = a.resources.QuestionsByUser(ctx, userID)
				default:
					questions, err = a.resources.ListQuestions(ctx)
				}
				if err != nil {
					return err
				}

				if len(questions) == 0 {
					fmt.Println("No hay preguntas.")
					return nil
				}
				for _, q := range questions {
					printQuestionSummary(q)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&hashtag, "hashtag", "", "Filtrar por hashtag")
	cmd.Flags().StringVar(&userID, "user", "", "Filtrar por ID de usuario")
	cmd.Flags().BoolVar(&mine, "mine", false, "Mostrar solo mis preguntas")

	return cmd
}

func questionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Mostrar una pregunta y sus respuestas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id de pregunta inválido: %s", args[0])
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				ctx := cmd.Context()
				question, err := a.resources.GetQuestion(ctx, id)
				if err != nil {
					return err
				}

				fmt.Printf("# %s\n\n", question.Title)
				fmt.Println(a.sanitizer.Sanitize(question.Content))
				if len(question.Hashtags) > 0 {
					fmt.Printf("\n%s\n", formatHashtags(question.Hashtags))
				}

				responses, err := a.resources.ResponsesForQuestion(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("\n%d respuestas\n", len(responses))
				for _, r := range responses {
					fmt.Printf("\n--- [%d] %s\n", r.ID, r.Date)
					fmt.Println(a.sanitizer.Sanitize(r.Content))
				}
				return nil
			})
		},
	}
}

func questionsNewCmd() *cobra.Command {
	var title, content string
	var hashtags []string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Publicar una pregunta nueva",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				question := model.Question{
					Title:   title,
					Content: content,
					UserID:  a.session.CurrentUser().ID,
				}
				for _, h := range hashtags {
					question.Hashtags = append(question.Hashtags, model.Hashtag{
						Name: strings.TrimPrefix(h, "#"),
					})
				}

				created, err := a.resources.CreateQuestion(cmd.Context(), question)
				if err != nil {
					return err
				}
				fmt.Printf("Pregunta publicada con id %d.\n", created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Título de la pregunta")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Contenido en Markdown")
	cmd.Flags().StringSliceVar(&hashtags, "hashtags", nil, "Hashtags (separados por comas)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func questionsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Eliminar una pregunta propia",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("id de pregunta inválido: %s", args[0])
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.runProtected(func() error {
				ctx := cmd.Context()
				question, err := a.resources.GetQuestion(ctx, id)
				if err != nil {
					return err
				}
				// サーバー側でも所有権は検証されるが、無駄な409を避けるため事前に確認する
				if !a.session.CurrentUser().IsOwnerOf(question.UserID) {
					return fmt.Errorf("solo puede eliminar sus propias preguntas")
				}
				if err := a.resources.DeleteQuestion(ctx, id); err != nil {
					return err
				}
				fmt.Printf("Pregunta %d eliminada.\n", id)
				return nil
			})
		},
	}
}

// printQuestionSummary は一覧用の1件分の要約を出力する。
func printQuestionSummary(q model.Question) {
	fmt.Printf("[%d] %s\n", q.ID, q.Title)
	fmt.Printf("     %d vistas · %d respuestas", q.Views, q.ResponseCount)
	if len(q.Hashtags) > 0 {
		fmt.Printf(" · %s", formatHashtags(q.Hashtags))
	}
	fmt.Println()
}

// formatHashtags はハッシュタグを#付きで連結する。
func formatHashtags(hashtags []model.Hashtag) string {
	names := make([]string, len(hashtags))
	for i, h := range hashtags {
		names[i] = "#" + h.Name
	}
	return strings.Join(names, " ")
}
