package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 在 worker 上執行的工作
type Job func(ctx context.Context) (interface{}, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 有界隊列與固定數量的 worker
type Manager struct {
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1
	}
	return &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxSize),
		done:   make(chan struct{}),
	}
}

// Start 啟動 worker
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		for i := 0; i < m.config.Workers; i++ {
			m.wg.Add(1)
			go m.worker()
		}
		common.LogInfo("推薦隊列已啟動",
			zap.Int("workers", m.config.Workers),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	})
}

// Enqueue 將請求加入隊列，隊列已滿時立即回傳錯誤
func (m *Manager) Enqueue(ctx context.Context, job Job) (<-chan Result, error) {
	// 持有讀鎖直到送入完成，Close 取得寫鎖後不會再有請求進入隊列
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, common.ErrQueueClosed
	}

	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, common.ErrQueueFull
	}
}

// Do 排入隊列並等待結果
func (m *Manager) Do(ctx context.Context, job Job) (interface{}, error) {
	ch, err := m.Enqueue(ctx, job)
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			res := m.run(req)
			atomic.AddInt64(&m.processed, 1)
			req.Result <- res
		}
	}
}

func (m *Manager) run(req *Request) (res Result) {
	if err := req.Context.Err(); err != nil {
		return Result{Error: err}
	}

	defer func() {
		if r := recover(); r != nil {
			common.LogError("隊列工作發生 panic", zap.Any("panic", r))
			res = Result{Error: common.ErrInternalError.Wrap(fmt.Errorf("panic: %v", r))}
		}
	}()

	value, err := req.Job(req.Context)
	return Result{Value: value, Error: err}
}

// Status 獲取隊列狀態
func (m *Manager) Status() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止 worker；尚未處理的請求以 ErrQueueClosed 回覆
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		close(m.done)
		m.wg.Wait()

		for {
			select {
			case req := <-m.queue:
				req.Result <- Result{Error: common.ErrQueueClosed}
			default:
				return
			}
		}
	})
}
