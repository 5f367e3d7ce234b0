package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"recipe-collector/internal/core/ai/provider"
	"recipe-collector/internal/infrastructure/config"
	"recipe-collector/internal/pkg/common"
)

var (
	// ErrQueueFull 佇列已滿
	ErrQueueFull = errors.New("queue is full")
	// ErrClosed 佇列已關閉
	ErrClosed = errors.New("queue manager is closed")
)

// Job 在工作者上執行的推論呼叫
type Job func(ctx context.Context) (*provider.Response, error)

// Request 佇列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Response *provider.Response
	Error    error
}

// Status 佇列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 限制同時進行的推論數量
type Manager struct {
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 建立佇列並啟動工作者
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	m := &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxSize),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.run(req)
		}
	}
}

func (m *Manager) run(req *Request) {
	defer atomic.AddInt64(&m.processed, 1)

	// 等待期間已取消的請求不再呼叫模型
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: err}
		return
	}
	resp, err := req.Job(req.Context)
	req.Result <- Result{Response: resp, Error: err}
}

// Submit 放入佇列並等待結果
func (m *Manager) Submit(ctx context.Context, job Job) (*provider.Response, error) {
	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case <-m.done:
		return nil, ErrClosed
	default:
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, ErrQueueFull
	}

	select {
	case res := <-req.Result:
		return res.Response, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

// GetQueueStatus 取得佇列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止工作者，進行中的呼叫會完成
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}
