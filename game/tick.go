package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// overrunTolerance 超出 Tick 间隔多少才记录告警
const overrunTolerance = 100 * time.Millisecond

var ErrAlreadyStarted = errors.New("tick loop already started")

// Start 启动 Tick 循环；每个进程只允许一个，重复调用返回 ErrAlreadyStarted
func (g *Game) Start(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		g.log.Warnw("tick loop already started, ignoring")
		return ErrAlreadyStarted
	}
	g.log.Infow("tick loop starting", "interval", g.interval)
	go g.run(ctx)
	return nil
}

// Done 循环退出（ctx 取消或故障）时关闭
func (g *Game) Done() <-chan struct{} { return g.done }

// Err 循环因故障停止时返回原因；须在 Done 关闭后读取
func (g *Game) Err() error { return g.err }

func (g *Game) run(ctx context.Context) {
	defer close(g.done)
	defer func() {
		if r := recover(); r != nil {
			g.err = fmt.Errorf("tick loop panic: %v", r)
			g.log.Errorw("tick loop halted", "tick", g.tick.Load(), "panic", r, zap.Stack("stack"))
		}
	}()

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Infow("tick loop stopped", "tick", g.tick.Load())
			return
		default:
		}

		elapsed := g.Tick()
		wait := g.interval - elapsed
		if wait <= 0 {
			if -wait > overrunTolerance {
				g.metrics.IncOverrun()
				g.log.Warnw("tick overrun", "tick", g.tick.Load(), "elapsed", elapsed, "interval", g.interval)
			}
			continue
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			g.log.Infow("tick loop stopped", "tick", g.tick.Load())
			return
		case <-timer.C:
		}
	}
}

// Tick 执行一次：处理动作 → 精灵走动 → 回蓝 → 湿身结算 → 感知 → 生成快照 → 投递，
// 返回耗时（单调时钟）
func (g *Game) Tick() time.Duration {
	start := time.Now()
	out := g.step()
	g.deliver(out)
	elapsed := time.Since(start)
	g.metrics.AddTick(elapsed.Nanoseconds())
	return elapsed
}

// step 持锁阶段；panic 时也会释放锁
func (g *Game) step() Outbox {
	g.mu.Lock()
	defer g.mu.Unlock()

	tick := g.tick.Add(1)
	g.world.beginTick(tick)
	applied, stale, out := g.world.ProcessActions()
	g.metrics.AddApplied(applied)
	g.metrics.AddStale(stale)

	g.world.WanderNPCs()
	rules := g.world.Rules()
	if every := rules.TicksPerManaRegen; every > 0 && tick%uint64(every) == 0 {
		out = append(out, g.world.RegenerateMana()...)
	}
	out = append(out, g.world.Weather()...)
	if every := rules.TicksPerSensory; every > 0 && tick%uint64(every) == 0 {
		out = append(out, g.world.SensoryPass()...)
	}
	if g.world.PlayerCount() > 0 {
		out = append(out, g.world.Snapshots(tick)...)
	}
	return out
}
