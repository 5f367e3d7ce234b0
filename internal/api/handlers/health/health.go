package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-collector/internal/core/ai/cache"
	"recipe-collector/internal/core/ai/queue"
	"recipe-collector/internal/core/recipecache"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/pkg/common"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	Version        string                 `json:"version"`
	Runtime        map[string]interface{} `json:"runtime"`
	Queue          *queue.Status          `json:"queue,omitempty"`
	RecipeCache    *recipecache.Stats     `json:"recipe_cache,omitempty"`
	InferenceCache map[string]interface{} `json:"inference_cache,omitempty"`
}

// Handler 健康檢查處理器；queue、recipes、store 皆可為 nil
type Handler struct {
	cfg     *config.Config
	queue   *queue.Manager
	recipes *recipecache.Cache
	store   cache.Store
}

// NewHandler 建立健康檢查處理器
func NewHandler(cfg *config.Config, q *queue.Manager, recipes *recipecache.Cache, store cache.Store) *Handler {
	return &Handler{cfg: cfg, queue: q, recipes: recipes, store: store}
}

// HealthCheck 回傳版本、執行期與各元件狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
	}
	if h.recipes != nil {
		stats := h.recipes.Stats()
		response.RecipeCache = &stats
	}
	if h.store != nil {
		response.InferenceCache = h.store.Stats()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 佇列已滿時回報未就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue != nil {
		if s := h.queue.GetQueueStatus(); s.QueueLength >= s.MaxQueueSize {
			c.JSON(common.ErrServiceUnavailable.Status, gin.H{
				"status":  "busy",
				"code":    common.ErrServiceUnavailable.Code,
				"message": common.ErrServiceUnavailable.Message,
				"queue":   s,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
