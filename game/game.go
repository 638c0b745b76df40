package game

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"wandworld/protocol"
)

// DefaultTickInterval 默认 Tick 间隔
const DefaultTickInterval = 750 * time.Millisecond

var ErrDuplicateClient = errors.New("client already connected")

// Options 构造 Game 的参数
type Options struct {
	TickInterval time.Duration
	World        WorldConfig
	Sender       Sender
	Logger       *zap.SugaredLogger
}

// Game 持有唯一的 World，所有状态变更都在同一把锁下进行：
// 连接、断开、提交意图、以及一次 Tick 的处理与快照阶段。
type Game struct {
	mu       deadlock.Mutex
	world    *World
	sender   Sender
	log      *zap.SugaredLogger
	metrics  *Metrics
	interval time.Duration
	tick     atomic.Uint64

	started atomic.Bool
	done    chan struct{}
	err     error // Done 关闭后可读
}

type discardSender struct{}

func (discardSender) Send(ClientID, protocol.Envelope) error { return nil }

func New(opts Options) *Game {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.World.Rules == (Rules{}) {
		opts.World.Rules = DefaultRules()
	}
	if opts.Sender == nil {
		opts.Sender = discardSender{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Game{
		world:    NewWorld(opts.World),
		sender:   opts.Sender,
		log:      opts.Logger,
		metrics:  &Metrics{},
		interval: opts.TickInterval,
		done:     make(chan struct{}),
	}
}

func (g *Game) Metrics() *Metrics { return g.metrics }
func (g *Game) TickInterval() time.Duration { return g.interval }
func (g *Game) CurrentTick() uint64 { return g.tick.Load() }

func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.PlayerCount()
}

// QueuedIntents 等待下一个 Tick 执行的意图数
func (g *Game) QueuedIntents() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.QueuedIntents()
}

func (g *Game) Rules() Rules {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.Rules()
}

// UpdateRules 热更新规则，下一个动作立即生效
func (g *Game) UpdateRules(r Rules) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("update rules: %w", err)
	}
	g.mu.Lock()
	g.world.SetRules(r)
	g.mu.Unlock()
	g.log.Infow("rules updated",
		"viewDistance", r.ViewDistance,
		"shoutManaCost", r.ShoutManaCost,
		"destroyWallManaCost", r.DestroyWallManaCost,
		"manaRegenPerCycle", r.ManaRegenPerCycle,
		"ticksPerManaRegen", r.TicksPerManaRegen,
		"raining", r.Raining,
		"ticksPerSensory", r.TicksPerSensory)
	return nil
}

// Connect 创建玩家，给新玩家发送 initial_state 与欢迎通知，
// 并通知同场景的其他玩家。投递在锁内完成，保证 initial_state 先于任何 world_update。
func (g *Game) Connect(id ClientID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.world.Player(id); exists {
		return fmt.Errorf("connect %s: %w", id, ErrDuplicateClient)
	}
	p, others := g.world.AddPlayer(id)

	var out Outbox
	out.send(id, protocol.MsgInitialState, g.world.InitialState(p, g.interval.Seconds()))
	out.notice(id, KeyWelcome, SeverityWelcome, nil)
	out = append(out, others...)
	g.deliver(out)

	g.metrics.IncConnect()
	g.log.Infow("player connected", "id", id, "name", p.Name, "players", g.world.PlayerCount())
	return nil
}

// Disconnect 移除玩家；重复调用返回 false
func (g *Game) Disconnect(id ClientID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, out := g.world.RemovePlayer(id)
	if p == nil {
		g.log.Debugw("disconnect for unknown client", "id", id)
		return false
	}
	g.deliver(out)

	g.metrics.IncDisconnect()
	g.log.Infow("player disconnected", "id", id, "name", p.Name, "players", g.world.PlayerCount())
	return true
}

// Submit 入队一个意图并返回回执（只发给提交者）
func (g *Game) Submit(id ClientID, in protocol.Intent) protocol.IntentAck {
	g.mu.Lock()
	ack, err := g.world.QueueAction(id, in)
	g.mu.Unlock()

	if err != nil {
		g.metrics.IncRejected()
		g.log.Debugw("intent rejected", "id", id, "type", in.Type, "error", err)
		return ack
	}
	g.metrics.IncQueued()
	return ack
}
