// Package service 組合提示詞、媒體、快取與工作池完成一次推論
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-collector/internal/core/ai"
	"recipe-collector/internal/core/ai/cache"
	"recipe-collector/internal/core/ai/image"
	"recipe-collector/internal/core/ai/provider"
	"recipe-collector/internal/core/ai/queue"
	"recipe-collector/internal/core/classify"
	"recipe-collector/internal/core/recipe"
	"recipe-collector/internal/infrastructure/metrics"
	"recipe-collector/internal/pkg/common"
)

// Options 推論服務設定
type Options struct {
	Prompt  string        // 空字串使用 ai.DefaultExtractionPrompt
	Timeout time.Duration // 單次推論上限
}

// Service AI 服務
type Service struct {
	provider provider.Provider
	store    cache.Store
	queue    *queue.Manager
	media    *image.Processor
	opts     Options
}

var _ ai.Inferrer = (*Service)(nil)

// NewService 建立推論服務；store 與 queue 可為 nil
func NewService(p provider.Provider, store cache.Store, q *queue.Manager, media *image.Processor, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 150 * time.Second
	}
	if media == nil {
		media = image.NewProcessor(0, 0)
	}
	return &Service{provider: p, store: store, queue: q, media: media, opts: opts}
}

// Infer 呼叫模型並把回應解析成 InferenceResult
func (s *Service) Infer(ctx context.Context, req ai.InferenceRequest) (*recipe.InferenceResult, error) {
	prompt := ai.BuildPrompt(s.opts.Prompt, req.MediaKind, req.Sources)

	var media []provider.Media
	if len(req.Media) > 0 {
		m, err := s.prepareMedia(req)
		if err != nil {
			return nil, common.ErrInference.Wrap(err)
		}
		media = append(media, m)
	}

	key := cache.Key(s.provider.GetModel(), prompt, req.Media)
	if content, ok := s.cached(ctx, key); ok {
		if res, err := ParseResponse(content); err == nil {
			return res, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.generate(callCtx, &provider.Request{Prompt: prompt, Media: media})
	elapsed := time.Since(start)
	metrics.ObserveInference(s.provider.GetModel(), err, elapsed)
	common.LogAICall(s.provider.GetModel(), elapsed, err)
	if err != nil {
		// 呼叫端取消時直接回傳 context 錯誤
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.ErrInference.Wrap(err)
	}

	res, err := ParseResponse(resp.Content)
	if err != nil {
		common.LogWarn("AI 回應無法解析",
			zap.String("response", common.TruncateRunes(resp.Content, 200)),
			zap.Error(err),
		)
		return nil, common.ErrInference.Wrap(err)
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("推論結果快取寫入失敗", zap.Error(err))
		}
	}
	return res, nil
}

func (s *Service) prepareMedia(req ai.InferenceRequest) (provider.Media, error) {
	switch req.MediaKind {
	case classify.MediaVideo:
		url, err := s.media.PrepareVideo(req.Media, req.MimeType)
		return provider.Media{Kind: provider.MediaVideo, DataURL: url}, err
	case classify.MediaImage:
		url, err := s.media.PrepareImage(req.Media)
		return provider.Media{Kind: provider.MediaImage, DataURL: url}, err
	default:
		return provider.Media{}, fmt.Errorf("media without kind")
	}
}

func (s *Service) cached(ctx context.Context, key string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	content, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("推論結果快取讀取失敗", zap.Error(err))
		}
		common.LogCacheMiss("inference")
		metrics.CacheLookup("inference", false)
		return "", false
	}
	common.LogCacheHit("inference")
	metrics.CacheLookup("inference", true)
	return content, true
}

func (s *Service) generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	job := func(ctx context.Context) (*provider.Response, error) {
		return s.provider.Generate(ctx, req)
	}
	if s.queue == nil {
		return job(ctx)
	}
	return s.queue.Submit(ctx, job)
}

// ParseResponse 取出回應中的 JSON 物件並轉為 InferenceResult
func ParseResponse(content string) (*recipe.InferenceResult, error) {
	raw, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := common.ParseJSON(raw, &data); err != nil {
		// 部分模型會輸出未加引號的鍵
		data = nil
		if common.ParseJSON(common.QuoteJSONKeys(raw), &data) != nil {
			return nil, fmt.Errorf("invalid JSON in response: %w", err)
		}
	}
	return recipe.ParseInference(data), nil
}
