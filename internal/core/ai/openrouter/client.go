package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-collector/internal/core/ai/provider"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/pkg/common"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// ErrEmptyResponse 模型回傳沒有內容
var ErrEmptyResponse = errors.New("empty content in response")

// Client OpenRouter API 客戶端
type Client struct {
	client  *resty.Client
	config  config.OpenRouterConfig
	timeout time.Duration
}

var _ provider.Provider = (*Client)(nil)

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://github.com/recipe-collector").
		SetHeader("X-Title", "Recipe Collector")

	return &Client{client: client, config: cfg, timeout: timeout}
}

// Generate 送出 chat completion 請求，媒體以 data URL 附在文字之前
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	content := make([]common.Content, 0, len(req.Media)+1)
	for _, m := range req.Media {
		switch m.Kind {
		case provider.MediaVideo:
			content = append(content, common.VideoContent(m.DataURL))
		default:
			content = append(content, common.ImageContent(m.DataURL))
		}
	}
	content = append(content, common.TextContent(req.Prompt))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}
	body := common.ChatRequest{
		Model:       c.config.Model,
		Messages:    []common.Message{{Role: "user", Content: content}},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("media", len(req.Media)),
		zap.Int("prompt_chars", len(req.Prompt)),
	)

	var out common.ChatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := common.TruncateRunes(sanitizeResponse(resp.String()), 300)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", msg),
		)
		return nil, fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), msg)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	return &provider.Response{Content: out.Choices[0].Message.Content, Model: body.Model}, nil
}

// GetModel 目前使用的模型
func (c *Client) GetModel() string { return c.config.Model }

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration { return c.timeout }

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// sanitizeResponse 移除錯誤回應中可能夾帶的媒體資料
func sanitizeResponse(body string) string {
	if strings.Contains(body, "data:image/") || strings.Contains(body, "data:video/") {
		return "[MEDIA_DATA_REMOVED]"
	}
	if len(body) > 100 && strings.Contains(body, "base64") {
		return "[BASE64_DATA_REMOVED]"
	}
	return body
}
