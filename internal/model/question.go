// Package model はドメインモデルを定義する。
package model

// Hashtag は質問に付与されるハッシュタグを表す。
type Hashtag struct {
	ID   int    `json:"hashtag_id,omitempty"`
	Name string `json:"name"`
}

// Question はフォーラムの質問を表す。本文はMarkdown。
type Question struct {
	ID            int       `json:"question_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Hashtags      []Hashtag `json:"hashtags,omitempty"`
	Views         int       `json:"views,omitempty"`
	ResponseCount int       `json:"response_count,omitempty"`
	Date          string    `json:"date,omitempty"`
}

// Response は質問への回答を表す。
type Response struct {
	ID         int    `json:"response_id,omitempty"`
	QuestionID int    `json:"question_id"`
	UserID     string `json:"user_id,omitempty"`
	Content    string `json:"content"`
	Date       string `json:"date,omitempty"`
}
