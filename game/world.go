package game

import (
	"fmt"
	"math/rand"
	"sort"

	"wandworld/protocol"
)

// Rules 可在运行时热更新的规则
type Rules struct {
	ViewDistance        int     `json:"viewDistance"`
	ShoutManaCost       int     `json:"shoutManaCost"`
	DestroyWallManaCost int     `json:"destroyWallManaCost"`
	ManaRegenPerCycle   float64 `json:"manaRegenPerCycle"`
	TicksPerManaRegen   int     `json:"ticksPerManaRegen"`

	Raining       bool    `json:"raining"`
	RainIntensity float64 `json:"rainIntensity"` // [0,1]，只影响客户端表现
	DryAfterTicks int     `json:"dryAfterTicks"` // 0 表示不会自然变干

	PixieWanderChance float64 `json:"pixieWanderChance"` // 每 Tick 走动概率
	PixieManaBoost    float64 `json:"pixieManaBoost"`    // 每只附近精灵额外的回蓝量
	PixieBoostRange   int     `json:"pixieBoostRange"`   // 曼哈顿距离
	TicksPerSensory   int     `json:"ticksPerSensory"`
}

func DefaultRules() Rules {
	return Rules{
		ViewDistance:        8,
		ShoutManaCost:       5,
		DestroyWallManaCost: 10,
		ManaRegenPerCycle:   0.5,
		TicksPerManaRegen:   3,

		RainIntensity: 0.25,
		DryAfterTicks: 20,

		PixieWanderChance: 0.3,
		PixieManaBoost:    1,
		PixieBoostRange:   3,
		TicksPerSensory:   5,
	}
}

func (r Rules) Validate() error {
	switch {
	case r.ViewDistance < 0:
		return fmt.Errorf("viewDistance must be >= 0, got %d", r.ViewDistance)
	case r.ShoutManaCost < 0:
		return fmt.Errorf("shoutManaCost must be >= 0, got %d", r.ShoutManaCost)
	case r.DestroyWallManaCost < 0:
		return fmt.Errorf("destroyWallManaCost must be >= 0, got %d", r.DestroyWallManaCost)
	case r.ManaRegenPerCycle < 0:
		return fmt.Errorf("manaRegenPerCycle must be >= 0, got %v", r.ManaRegenPerCycle)
	case r.TicksPerManaRegen <= 0:
		return fmt.Errorf("ticksPerManaRegen must be > 0, got %d", r.TicksPerManaRegen)
	case r.RainIntensity < 0 || r.RainIntensity > 1:
		return fmt.Errorf("rainIntensity must be in [0,1], got %v", r.RainIntensity)
	case r.DryAfterTicks < 0:
		return fmt.Errorf("dryAfterTicks must be >= 0, got %d", r.DryAfterTicks)
	case r.PixieWanderChance < 0 || r.PixieWanderChance > 1:
		return fmt.Errorf("pixieWanderChance must be in [0,1], got %v", r.PixieWanderChance)
	case r.PixieManaBoost < 0:
		return fmt.Errorf("pixieManaBoost must be >= 0, got %v", r.PixieManaBoost)
	case r.PixieBoostRange < 0:
		return fmt.Errorf("pixieBoostRange must be >= 0, got %d", r.PixieBoostRange)
	case r.TicksPerSensory <= 0:
		return fmt.Errorf("ticksPerSensory must be > 0, got %d", r.TicksPerSensory)
	}
	return nil
}

// WorldConfig 构造 World 的参数
type WorldConfig struct {
	Rules        Rules
	SpawnShrine  bool  // 场景 (0,0) 生成出生神殿
	Seed         int64 // 随机朝向、精灵位置与走动、感官掷骰
	Pixies       int   // 出生场景中的法力精灵数量
	IndoorScenes []SceneKey
	SceneNamer   SceneNamer
}

// World 玩家与场景的索引，独占所有 Player / Scene。
// 非并发安全：由 Game 在持锁期间调用。
type World struct {
	rules       Rules
	players     map[ClientID]*Player
	npcs        map[NPCID]*NPC
	scenes      map[SceneKey]*Scene
	queue       *ActionQueue
	rng         *rand.Rand
	spawnShrine bool
	indoor      map[SceneKey]bool
	namer       SceneNamer
	now         uint64 // 当前 Tick，由 beginTick 推进
}

func NewWorld(cfg WorldConfig) *World {
	w := &World{
		rules:       cfg.Rules,
		players:     make(map[ClientID]*Player),
		npcs:        make(map[NPCID]*NPC),
		scenes:      make(map[SceneKey]*Scene),
		queue:       NewActionQueue(),
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		spawnShrine: cfg.SpawnShrine,
		indoor:      make(map[SceneKey]bool, len(cfg.IndoorScenes)),
		namer:       cfg.SceneNamer,
	}
	for _, k := range cfg.IndoorScenes {
		w.indoor[k] = true
	}
	w.spawnPixies(cfg.Pixies)
	return w
}

func (w *World) Rules() Rules { return w.rules }
func (w *World) SetRules(r Rules) { w.rules = r }
func (w *World) PlayerCount() int { return len(w.players) }
func (w *World) QueuedIntents() int { return w.queue.Len() }

func (w *World) beginTick(tick uint64) { w.now = tick }

// Player 查询玩家，不存在返回 false
func (w *World) Player(id ClientID) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Scene 查询已存在的场景，不会创建
func (w *World) Scene(x, y int) (*Scene, bool) {
	s, ok := w.scenes[SceneKey{X: x, Y: y}]
	return s, ok
}

// sceneAt 获取或惰性创建场景
func (w *World) sceneAt(key SceneKey) *Scene {
	s, ok := w.scenes[key]
	if !ok {
		s = newScene(key, w.namer)
		s.Indoors = w.indoor[key]
		if w.spawnShrine && key == (SceneKey{}) {
			s.buildSpawnShrine()
		}
		w.scenes[key] = s
	}
	return s
}

// playerIDs 按 ID 排序，保证同一输入产生同样的输出顺序
func (w *World) playerIDs() []ClientID {
	ids := make([]ClientID, 0, len(w.players))
	for id := range w.players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddPlayer 创建玩家并放入出生场景，通知场景内其他玩家。
// 重复的 id 属于调用方错误。
func (w *World) AddPlayer(id ClientID) (*Player, Outbox) {
	p := NewPlayer(id, w.rng)
	w.players[id] = p
	s := w.sceneAt(p.sceneKey())
	s.Add(id)

	var out Outbox
	pub := p.Public()
	for _, other := range s.Members() {
		if other != id {
			out.send(other, protocol.MsgEnteredScene, pub)
		}
	}
	return p, out
}

// RemovePlayer 移除玩家并清理待处理动作；未知 id 返回 nil（幂等）
func (w *World) RemovePlayer(id ClientID) (*Player, Outbox) {
	w.queue.Drop(id)
	p, ok := w.players[id]
	if !ok {
		return nil, nil
	}
	delete(w.players, id)

	var out Outbox
	if s, ok := w.scenes[p.sceneKey()]; ok {
		s.Remove(id)
		exited := protocol.PlayerExited{ID: string(id), Name: p.Name}
		for _, other := range s.Members() {
			out.send(other, protocol.MsgExitedScene, exited)
		}
	}
	return p, out
}

// HandleSceneTransition 坐标跨场景后迁移成员关系；同一场景时什么都不做
func (w *World) HandleSceneTransition(p *Player, oldSceneX, oldSceneY int) Outbox {
	oldKey := SceneKey{X: oldSceneX, Y: oldSceneY}
	newKey := p.sceneKey()
	if oldKey == newKey {
		return nil
	}

	var out Outbox
	if old, ok := w.scenes[oldKey]; ok {
		old.Remove(p.ID)
		exited := protocol.PlayerExited{ID: string(p.ID), Name: p.Name}
		for _, other := range old.Members() {
			out.send(other, protocol.MsgExitedScene, exited)
		}
	}

	s := w.sceneAt(newKey)
	s.Add(p.ID)
	pub := p.Public()
	for _, other := range s.Members() {
		if other != p.ID {
			out.send(other, protocol.MsgEnteredScene, pub)
		}
	}
	return out
}

// MovePlayer 更新位置；跨场景时迁移成员关系并只给移动者发一条方向通知
func (w *World) MovePlayer(p *Player, dx, dy int, facing string) (MoveResult, Outbox) {
	res := p.UpdatePosition(dx, dy, facing)
	if !res.SceneChanged {
		return res, nil
	}
	out := w.HandleSceneTransition(p, res.OldSceneX, res.OldSceneY)
	if key, ok := transitionKeys[res.Transition]; ok {
		out.notice(p.ID, key, SeveritySystem, map[string]any{
			"scene_x": p.SceneX,
			"scene_y": p.SceneY,
		})
	}
	return res, out
}

// RegenerateMana 给所有玩家回蓝；附近每只精灵额外加 PixieManaBoost，
// 精灵带来了实际增益时通知玩家
func (w *World) RegenerateMana() Outbox {
	var out Outbox
	for _, id := range w.playerIDs() {
		p := w.players[id]
		near := w.pixiesNear(p, w.rules.PixieBoostRange)
		gain := p.RegenerateMana(w.rules.ManaRegenPerCycle + float64(near)*w.rules.PixieManaBoost)
		if near > 0 && w.rules.PixieManaBoost > 0 && gain > 0 {
			out.notice(id, KeyPixieManaBoost, SeverityGood, map[string]any{"amount": gain})
		}
	}
	return out
}

// Snapshot 单个玩家的每 Tick 快照
func (w *World) Snapshot(p *Player, tick uint64) protocol.WorldUpdate {
	return protocol.WorldUpdate{
		Tick:          tick,
		Self:          p.Private(),
		VisibleOthers: w.VisiblePlayersFor(p),
		VisibleNPCs:   w.VisibleNPCsFor(p),
		Terrain:       w.sceneAt(p.sceneKey()).Terrain(),
	}
}

// Snapshots 为每个在线玩家生成 world_update
func (w *World) Snapshots(tick uint64) Outbox {
	out := make(Outbox, 0, len(w.players))
	for _, id := range w.playerIDs() {
		p := w.players[id]
		out.send(id, protocol.MsgWorldUpdate, w.Snapshot(p, tick))
	}
	return out
}

// InitialState 新连接的完整初始数据
func (w *World) InitialState(p *Player, tickRate float64) protocol.InitialState {
	return protocol.InitialState{
		Player:        p.Private(),
		Others:        w.VisiblePlayersFor(p),
		NPCs:          w.VisibleNPCsFor(p),
		Terrain:       w.sceneAt(p.sceneKey()).Terrain(),
		GridWidth:     GridWidth,
		GridHeight:    GridHeight,
		TickRate:      tickRate,
		RainIntensity: w.rainIntensity(),
	}
}
