package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/jool/internal/model"
)

// ListHashtags は全ハッシュタグを取得する。
func (c *Client) ListHashtags(ctx context.Context) ([]model.Hashtag, error) {
	var hashtags []model.Hashtag
	if err := c.doJSON(ctx, http.MethodGet, "/Hashtags", nil, &hashtags); err != nil {
		return nil, fmt.Errorf("failed to list hashtags: %w", err)
	}
	return hashtags, nil
}

// CreateHashtag は新しいハッシュタグを作成する。
func (c *Client) CreateHashtag(ctx context.Context, name string) (*model.Hashtag, error) {
	var created model.Hashtag
	if err := c.doJSON(ctx, http.MethodPost, "/Hashtags", model.Hashtag{Name: name}, &created); err != nil {
		return nil, fmt.Errorf("failed to create hashtag %s: %w", name, err)
	}
	return &created, nil
}
