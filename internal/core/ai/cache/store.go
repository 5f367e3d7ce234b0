// Package cache 推論結果快取，支援記憶體與 Redis 兩種後端
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"recipe-collector/internal/infrastructure/config"
)

// Store 推論結果快取介面；未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Stats() map[string]interface{}
	Close() error
}

// Key 以提示詞與媒體內容產生快取鍵
func Key(model, prompt string, media []byte) string {
	p := hashBytes([]byte(model + "\x00" + prompt))
	if len(media) == 0 {
		return fmt.Sprintf("text:%s", p)
	}
	return fmt.Sprintf("multimodal:%s:%s", p, hashBytes(media))
}

func hashBytes(b []byte) string {
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:])
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		s, err := NewRedisStore(cfg.Redis, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return NewManager(cfg.Cache), nil
	}
}
