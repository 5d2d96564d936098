package codegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced with language tag",
			in:   "```html\n<html></html>\n```",
			want: "<html></html>",
		},
		{
			name: "fenced without language tag",
			in:   "```\n<div></div>\n```",
			want: "<div></div>",
		},
		{
			name: "no fence passes through",
			in:   "<html></html>",
			want: "<html></html>",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "\n\n  ```html\n<p>hi</p>\n```  \n",
			want: "<p>hi</p>",
		},
		{
			name: "empty content",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCodeBlock(tt.in); got != tt.want {
				t.Fatalf("ExtractCodeBlock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateFromScreenshot(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "```html\n<html>ok</html>\n```"}},
			},
		})
	}))
	defer srv.Close()

	c := &Client{
		APIKey:     "sk-test",
		Model:      "gpt-4o",
		APIBaseURL: srv.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	out, err := c.GenerateFromScreenshot(context.Background(), []byte{0x89, 0x50}, "image/png", "html_tailwind")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<html>ok</html>" {
		t.Fatalf("unexpected output %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	messages, ok := gotPayload["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", gotPayload["messages"])
	}
	userMsg := messages[1].(map[string]any)
	parts := userMsg["content"].([]any)
	imagePart := parts[0].(map[string]any)
	imageURL := imagePart["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(imageURL, "data:image/png;base64,") {
		t.Fatalf("expected base64 data url, got %q", imageURL)
	}
}

func TestGenerateFromScreenshotErrors(t *testing.T) {
	c := &Client{HTTPClient: http.DefaultClient}
	if _, err := c.GenerateFromScreenshot(context.Background(), []byte{1}, "image/png", "html_tailwind"); err == nil {
		t.Fatalf("expected error without api key")
	}

	c.APIKey = "sk-test"
	if _, err := c.GenerateFromScreenshot(context.Background(), nil, "image/png", "html_tailwind"); err == nil {
		t.Fatalf("expected error for empty screenshot")
	}
}

func TestGenerateFromScreenshotUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := &Client{
		APIKey:     "sk-test",
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	}
	if _, err := c.GenerateFromScreenshot(context.Background(), []byte{1}, "image/png", "html_tailwind"); err == nil {
		t.Fatalf("expected error for non-2xx upstream response")
	}
}

func TestSystemPromptForStack(t *testing.T) {
	for _, stack := range []string{"html_tailwind", "html_css", "react_tailwind"} {
		if SystemPromptForStack(stack) == "" {
			t.Fatalf("expected prompt for stack %q", stack)
		}
	}
	// Unknown stacks fall back to the default prompt instead of panicking.
	if SystemPromptForStack("unknown") == "" {
		t.Fatalf("expected fallback prompt for unknown stack")
	}
}
