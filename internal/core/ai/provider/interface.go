package provider

import (
	"context"
	"time"
)

// MediaKind 附件種類
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Media 表示附在請求中的媒體（data URL）
type Media struct {
	Kind    MediaKind
	DataURL string
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Prompt      string
	Media       []Media
	MaxTokens   int
	Temperature float64
}

// Response 表示從 AI 提供者收到的響應
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}
