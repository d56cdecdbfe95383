package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coreconfig "github.com/m3rciful/confbot/core/config"
	"github.com/m3rciful/confbot/services/serviceerr"
)

func testConfig(baseURL string) coreconfig.AssistantConfig {
	return coreconfig.AssistantConfig{
		APIKey:      "sk-test",
		BaseURL:     baseURL,
		Model:       "gpt-4",
		MaxTokens:   500,
		Temperature: 0.7,
		ImageSize:   "512x512",
	}
}

func TestAnswerSuccess(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Дважды два — четыре."}},
			},
		})
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	answer, err := c.Answer(context.Background(), "Сколько будет 2+2?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "Дважды два — четыре." {
		t.Fatalf("answer = %q", answer)
	}
	if body["model"] != "gpt-4" {
		t.Fatalf("model = %v", body["model"])
	}
	if mt, _ := body["max_tokens"].(float64); mt != 500 {
		t.Fatalf("max_tokens = %v", body["max_tokens"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
	system, _ := msgs[0].(map[string]any)
	if system["role"] != "system" || system["content"] != systemRole {
		t.Fatalf("system message = %v", system)
	}
	user, _ := msgs[1].(map[string]any)
	content, _ := user["content"].(string)
	if !strings.HasSuffix(content, "Сколько будет 2+2?") || !strings.Contains(content, "500 символов") {
		t.Fatalf("user prompt not wrapped: %q", content)
	}
}

func TestAnswerMissingChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	if _, err := c.Answer(context.Background(), "hi"); !serviceerr.IsUnexpectedFormat(err) {
		t.Fatalf("expected unexpected-format error, got %v", err)
	}
}

func TestAnswerHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down"}}`))
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	if _, err := c.Answer(context.Background(), "hi"); !serviceerr.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGenerateImageSuccess(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/generations") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]any{{"url": "https://img.example.com/1.png"}},
		})
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	url, err := c.GenerateImage(context.Background(), "кот на сцене")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if url != "https://img.example.com/1.png" {
		t.Fatalf("url = %q", url)
	}
	prompt, _ := body["prompt"].(string)
	if !strings.HasPrefix(prompt, imageInstruction) || !strings.HasSuffix(prompt, "кот на сцене") {
		t.Fatalf("prompt not wrapped: %q", prompt)
	}
	if n, _ := body["n"].(float64); n != 1 {
		t.Fatalf("n = %v", body["n"])
	}
	if body["size"] != "512x512" {
		t.Fatalf("size = %v", body["size"])
	}
}

func TestGenerateImageMissingData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"created": 1, "data": []any{}})
	}))
	defer ts.Close()

	c := New(testConfig(ts.URL))
	if _, err := c.GenerateImage(context.Background(), "x"); !serviceerr.IsUnexpectedFormat(err) {
		t.Fatalf("expected unexpected-format error, got %v", err)
	}
}
