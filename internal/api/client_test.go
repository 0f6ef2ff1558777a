package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/jool/internal/model"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, nil, 5*time.Second)
}

// TestClient_ListQuestions は質問一覧の取得を検証する。
func TestClient_ListQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/Questions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"question_id": 1, "title": "¿Cómo configurar Go?", "content": "..."},
			{"question_id": 2, "title": "¿Qué es un slice?", "content": "..."},
		})
	}))
	defer server.Close()

	questions, err := newTestClient(server.URL).ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}
	if questions[0].ID != 1 || questions[0].Title != "¿Cómo configurar Go?" {
		t.Errorf("questions[0] = %+v", questions[0])
	}
}

// TestClient_GetQuestion は質問の個別取得を検証する。
func TestClient_GetQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Questions/5" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"question_id": 5,
			"title":       "¿Cómo usar canales?",
			"hashtags":    []map[string]any{{"hashtag_id": 1, "name": "go"}},
		})
	}))
	defer server.Close()

	question, err := newTestClient(server.URL).GetQuestion(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetQuestion failed: %v", err)
	}
	if question.ID != 5 {
		t.Errorf("ID = %d, want 5", question.ID)
	}
	if len(question.Hashtags) != 1 || question.Hashtags[0].Name != "go" {
		t.Errorf("Hashtags = %+v", question.Hashtags)
	}
}

// TestClient_CreateQuestion は質問投稿のリクエストボディとレスポンスを検証する。
func TestClient_CreateQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Questions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var q model.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if q.Title != "Nueva pregunta" {
			t.Errorf("Title = %q", q.Title)
		}
		q.ID = 10
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(q)
	}))
	defer server.Close()

	created, err := newTestClient(server.URL).CreateQuestion(context.Background(), model.Question{
		Title:   "Nueva pregunta",
		Content: "contenido",
	})
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	if created.ID != 10 {
		t.Errorf("ID = %d, want 10", created.ID)
	}
}

// TestClient_DeleteQuestion は空ボディの2xx応答を成功として扱うことを検証する。
func TestClient_DeleteQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/Questions/5" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).DeleteQuestion(context.Background(), 5); err != nil {
		t.Fatalf("DeleteQuestion failed: %v", err)
	}
}

// TestClient_QuestionsByHashtag はハッシュタグ名がパスエスケープされることを検証する。
func TestClient_QuestionsByHashtag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Questions/hashtag/go routines" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{{"question_id": 1, "title": "t", "content": "c"}})
	}))
	defer server.Close()

	questions, err := newTestClient(server.URL).QuestionsByHashtag(context.Background(), "go routines")
	if err != nil {
		t.Fatalf("QuestionsByHashtag failed: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("len(questions) = %d, want 1", len(questions))
	}
}

// TestClient_ResponsesForQuestion は全回答からquestion_idで絞り込まれることを検証する。
func TestClient_ResponsesForQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Responses" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"response_id": 1, "question_id": 5, "content": "respuesta A"},
			{"response_id": 2, "question_id": 6, "content": "respuesta B"},
			{"response_id": 3, "question_id": 5, "content": "respuesta C"},
		})
	}))
	defer server.Close()

	responses, err := newTestClient(server.URL).ResponsesForQuestion(context.Background(), 5)
	if err != nil {
		t.Fatalf("ResponsesForQuestion failed: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("len(responses) = %d, want 2", len(responses))
	}
	for _, r := range responses {
		if r.QuestionID != 5 {
			t.Errorf("QuestionID = %d, want 5", r.QuestionID)
		}
	}
}

// TestClient_Unauthorized は401応答が認証エラーとして呼び出し元へ返ることを検証する。
// セッション破棄自体はTransportの責務なのでここでは扱わない。
func TestClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListQuestions(context.Background())

	var authErr *model.AuthError
	if !errors.As(err, &authErr) || authErr.Code != model.ErrCodeAuthenticationFailed {
		t.Fatalf("err = %v, want AUTHENTICATION_FAILED", err)
	}
}

// TestClient_ServerError はエラーボディのdetailがメッセージに含まれることを検証する。
func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "question not found"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetQuestion(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

// TestClient_CreateHashtag はハッシュタグ作成のリクエストを検証する。
func TestClient_CreateHashtag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Hashtags" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var h model.Hashtag
		if err := json.NewDecoder(r.Body).Decode(&h); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		h.ID = 3
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(h)
	}))
	defer server.Close()

	created, err := newTestClient(server.URL).CreateHashtag(context.Background(), "golang")
	if err != nil {
		t.Fatalf("CreateHashtag failed: %v", err)
	}
	if created.ID != 3 || created.Name != "golang" {
		t.Errorf("created = %+v", created)
	}
}
