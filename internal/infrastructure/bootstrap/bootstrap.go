// Package bootstrap 依設定組裝擷取流程的所有元件，API 伺服器與 CLI 共用
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"recipe-collector/internal/core/ai/cache"
	"recipe-collector/internal/core/ai/image"
	"recipe-collector/internal/core/ai/openrouter"
	"recipe-collector/internal/core/ai/queue"
	"recipe-collector/internal/core/ai/service"
	"recipe-collector/internal/core/downloader"
	"recipe-collector/internal/core/extract"
	"recipe-collector/internal/core/recipecache"
	"recipe-collector/internal/core/safeurl"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/pkg/common"
)

// App 組裝完成的元件
type App struct {
	Config       *config.Config
	Orchestrator *extract.Orchestrator
	Recipes      *recipecache.Cache
	Queue        *queue.Manager
	AICache      cache.Store // 推論快取關閉時為 nil
	Media        *image.Processor

	provider *openrouter.Client
}

// New 建立所有元件；失敗時已建立的資源會被釋放
func New(cfg *config.Config) (*App, error) {
	validator, err := safeurl.NewValidator(nil, cfg.Fetch.DenyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("failed to create url validator: %w", err)
	}
	fetcher := safeurl.NewFetcher(validator, safeurl.FetcherOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		Timeout:      cfg.Fetch.Timeout,
	})

	dl := downloader.New(downloader.Options{
		Binary:          cfg.Downloader.Binary,
		MetadataTimeout: cfg.Downloader.MetadataTimeout,
		DownloadTimeout: cfg.Downloader.DownloadTimeout,
		MaxFileBytes:    cfg.Downloader.MaxFileBytes,
		SubtitleLangs:   cfg.Downloader.SubtitleLangs,
		WorkDir:         cfg.Downloader.WorkDir,
	}, nil)

	store, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create inference cache: %w", err)
	}

	client := openrouter.NewClient(cfg.OpenRouter)
	q := queue.NewManager(cfg.Queue)
	media := image.NewProcessor(cfg.Image.MaxSizeBytes, cfg.AI.MaxVideoBytes)

	inferrer := service.NewService(client, store, q, media, service.Options{
		Prompt:  cfg.AI.ExtractionPrompt,
		Timeout: cfg.AI.InferenceTimeout,
	})

	// 中繼資料步驟會呼叫 yt-dlp 兩次（JSON 與字幕）
	orch := extract.New(validator, fetcher, dl, inferrer, extract.Timeouts{
		Metadata:  2 * cfg.Downloader.MetadataTimeout,
		Download:  cfg.Downloader.DownloadTimeout,
		Fetch:     cfg.Fetch.Timeout,
		Inference: cfg.AI.InferenceTimeout,
	})

	common.LogInfo("元件初始化完成",
		zap.String("model", client.GetModel()),
		zap.Bool("inference_cache", store != nil),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.Int("recipe_cache_capacity", cfg.RecipeCache.Capacity),
	)

	return &App{
		Config:       cfg,
		Orchestrator: orch,
		Recipes:      recipecache.New(cfg.RecipeCache.Capacity),
		Queue:        q,
		AICache:      store,
		Media:        media,
		provider:     client,
	}, nil
}

// Close 依建立的反向順序釋放資源
func (a *App) Close() {
	a.Queue.Close()
	if a.AICache != nil {
		if err := a.AICache.Close(); err != nil {
			common.LogWarn("關閉推論快取失敗", zap.Error(err))
		}
	}
	if err := a.provider.Close(); err != nil {
		common.LogWarn("關閉模型客戶端失敗", zap.Error(err))
	}
}
