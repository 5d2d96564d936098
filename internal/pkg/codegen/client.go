// Package codegen turns uploaded screenshots into frontend code by calling an
// OpenAI-compatible chat completions API. The provider is an external
// collaborator; this client only builds the prompt and extracts the answer.
package codegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shot2code/shot2code/internal/pkg/env"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"
const defaultModel = "gpt-4o"

type Client struct {
	APIKey     string
	Model      string
	APIBaseURL string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("OPENAI_API_KEY", "")),
		Model:      strings.TrimSpace(env.GetEnv("OPENAI_MODEL", defaultModel)),
		APIBaseURL: strings.TrimSpace(env.GetEnv("OPENAI_API_BASE_URL", defaultOpenAIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// GenerateFromScreenshot sends the screenshot and the stack prompt to the
// model and returns the generated markup.
func (c *Client) GenerateFromScreenshot(ctx context.Context, screenshot []byte, mimeType, stack string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", errors.New("OPENAI_API_KEY is not configured")
	}
	if len(screenshot) == 0 {
		return "", errors.New("screenshot is empty")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(screenshot))

	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{
				"role":    "system",
				"content": SystemPromptForStack(stack),
			},
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type":      "image_url",
						"image_url": map[string]string{"url": dataURL},
					},
					{
						"type": "text",
						"text": "Generate code for a web page that looks exactly like this screenshot.",
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("codegen request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("codegen response contained no choices")
	}

	return ExtractCodeBlock(out.Choices[0].Message.Content), nil
}

// ExtractCodeBlock strips a surrounding markdown fence when the model wraps
// its answer in one; otherwise the content is returned as-is.
func ExtractCodeBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the fence line
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
