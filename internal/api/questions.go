package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hitoshi/jool/internal/model"
)

// ListQuestions は全質問を取得する。
func (c *Client) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := c.doJSON(ctx, http.MethodGet, "/Questions", nil, &questions); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// GetQuestion は質問をIDで取得する。
func (c *Client) GetQuestion(ctx context.Context, id int) (*model.Question, error) {
	var question model.Question
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/Questions/%d", id), nil, &question); err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}
	return &question, nil
}

// CreateQuestion は新しい質問を投稿する。
func (c *Client) CreateQuestion(ctx context.Context, question model.Question) (*model.Question, error) {
	var created model.Question
	if err := c.doJSON(ctx, http.MethodPost, "/Questions", question, &created); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return &created, nil
}

// DeleteQuestion は質問を削除する。
func (c *Client) DeleteQuestion(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/Questions/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}
	return nil
}

// QuestionsByUser は指定ユーザーの質問を取得する。
func (c *Client) QuestionsByUser(ctx context.Context, userID string) ([]model.Question, error) {
	var questions []model.Question
	path := "/Questions/user/" + url.PathEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &questions); err != nil {
		return nil, fmt.Errorf("failed to list questions for user %s: %w", userID, err)
	}
	return questions, nil
}

// QuestionsByHashtag は指定ハッシュタグの質問を取得する。
func (c *Client) QuestionsByHashtag(ctx context.Context, hashtag string) ([]model.Question, error) {
	var questions []model.Question
	path := "/Questions/hashtag/" + url.PathEscape(hashtag)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &questions); err != nil {
		return nil, fmt.Errorf("failed to list questions for hashtag %s: %w", hashtag, err)
	}
	return questions, nil
}
