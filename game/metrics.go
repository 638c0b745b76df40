package game

import (
	"sync/atomic"
)

// Metrics 记录世界运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount        int64 // 已执行的 Tick 次数
	TotalTickNs      int64 // Tick 累计耗时（纳秒）
	Overruns         int64 // 超出 Tick 间隔的次数
	IntentsQueued    int64 // 入队的意图数
	IntentsRejected  int64 // 入队时被拒绝的意图数
	ActionsApplied   int64 // Tick 中实际执行的动作数
	StaleSkipped     int64 // 因玩家已离开而跳过的动作或投递
	DeliveryFailures int64 // 投递失败数
	Connects         int64
	Disconnects      int64
}

func (m *Metrics) IncQueued() { atomic.AddInt64(&m.IntentsQueued, 1) }
func (m *Metrics) IncRejected() { atomic.AddInt64(&m.IntentsRejected, 1) }
func (m *Metrics) AddApplied(n int) { atomic.AddInt64(&m.ActionsApplied, int64(n)) }
func (m *Metrics) AddStale(n int) { atomic.AddInt64(&m.StaleSkipped, int64(n)) }
func (m *Metrics) IncStale() { atomic.AddInt64(&m.StaleSkipped, 1) }
func (m *Metrics) IncDeliveryFailed() { atomic.AddInt64(&m.DeliveryFailures, 1) }
func (m *Metrics) IncOverrun() { atomic.AddInt64(&m.Overruns, 1) }
func (m *Metrics) IncConnect() { atomic.AddInt64(&m.Connects, 1) }
func (m *Metrics) IncDisconnect() { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"avg_tick_ms":       avgMs,
		"overruns":          atomic.LoadInt64(&m.Overruns),
		"intents_queued":    atomic.LoadInt64(&m.IntentsQueued),
		"intents_rejected":  atomic.LoadInt64(&m.IntentsRejected),
		"actions_applied":   atomic.LoadInt64(&m.ActionsApplied),
		"stale_skipped":     atomic.LoadInt64(&m.StaleSkipped),
		"delivery_failures": atomic.LoadInt64(&m.DeliveryFailures),
		"connects":          atomic.LoadInt64(&m.Connects),
		"disconnects":       atomic.LoadInt64(&m.Disconnects),
	}
}
