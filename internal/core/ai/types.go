// Package ai 定義推論請求與提示詞組裝
package ai

import (
	"context"

	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/recipe"
)

// MaxPromptTags 提示詞中最多列出的標籤數
const MaxPromptTags = 10

// Sources 推論時提供給模型的文字來源
type Sources struct {
	Subtitles   string
	Description string
	Title       string
	Creator     string
	Tags        []string
	SourceURL   string
	WebpageText string
}

// HasMetadata 是否有影片中繼資料
func (s Sources) HasMetadata() bool {
	return s.Subtitles != "" || s.Description != "" || s.Title != "" || s.Creator != "" || len(s.Tags) > 0
}

// InferenceRequest 推論請求，Media 為空時只用文字來源
type InferenceRequest struct {
	Media     []byte
	MediaKind classify.MediaKind
	MimeType  string
	Sources   Sources
}

// Inferrer 推論介面：媒體與來源進，原始食譜欄位出
type Inferrer interface {
	Infer(ctx context.Context, req InferenceRequest) (*recipe.InferenceResult, error)
}
