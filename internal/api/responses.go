package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/jool/internal/model"
)

// ListResponses は全回答を取得する。
// サーバーは質問別の取得を提供しないため、呼び出し側でquestion_idで絞り込む。
func (c *Client) ListResponses(ctx context.Context) ([]model.Response, error) {
	var responses []model.Response
	if err := c.doJSON(ctx, http.MethodGet, "/Responses", nil, &responses); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// ResponsesForQuestion は指定質問への回答を取得する。
func (c *Client) ResponsesForQuestion(ctx context.Context, questionID int) ([]model.Response, error) {
	all, err := c.ListResponses(ctx)
	if err != nil {
		return nil, err
	}
	var filtered []model.Response
	for _, r := range all {
		if r.QuestionID == questionID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// CreateResponse は質問への回答を投稿する。
func (c *Client) CreateResponse(ctx context.Context, response model.Response) (*model.Response, error) {
	var created model.Response
	if err := c.doJSON(ctx, http.MethodPost, "/Responses", response, &created); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}
	return &created, nil
}

// DeleteResponse は回答を削除する。
func (c *Client) DeleteResponse(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/Responses/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete response %d: %w", id, err)
	}
	return nil
}
