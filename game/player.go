package game

import (
	"math/rand"

	"wandworld/protocol"
)

// ClientID 每个连接唯一的玩家标识
type ClientID string

// 世界常量，连接时下发给客户端
const (
	GridWidth  = 20
	GridHeight = 15
)

// 玩家初始属性
const (
	DefaultMaxHealth = 100
	DefaultMaxMana   = 175
	InitialPotions   = 7
	InitialWalls     = 7
	PotionHeal       = 15
)

// 朝向符号
const (
	FacingNorth = "^"
	FacingSouth = "v"
	FacingWest  = "<"
	FacingEast  = ">"
)

var facings = []string{FacingNorth, FacingSouth, FacingWest, FacingEast}

func validFacing(s string) bool {
	for _, f := range facings {
		if f == s {
			return true
		}
	}
	return false
}

// Direction 跨场景时的方向
type Direction int

const (
	DirNone Direction = iota
	DirWest
	DirEast
	DirNorth
	DirSouth
)

func (d Direction) String() string {
	switch d {
	case DirWest:
		return "west"
	case DirEast:
		return "east"
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	default:
		return "none"
	}
}

// Player 服务端权威的玩家状态，由 World 独占
type Player struct {
	ID     ClientID
	Name   string
	SceneX int
	SceneY int
	X      int // [0, GridWidth)
	Y      int // [0, GridHeight)
	Char   string

	MaxHealth     int
	CurrentHealth int
	MaxMana       int
	CurrentMana   int
	Potions       int
	Gold          int
	Walls         int
	IsWet         bool

	manaRegen float64 // 未满 1 点的回蓝累积
	wetSince  uint64  // 最近一次被淋湿或踩水的 Tick
}

// NewPlayer 以默认属性创建玩家：场景 (0,0) 正中，满状态，随机朝向
func NewPlayer(id ClientID, rng *rand.Rand) *Player {
	return &Player{
		ID:            id,
		Name:          playerName(id),
		X:             GridWidth / 2,
		Y:             GridHeight / 2,
		Char:          facings[rng.Intn(len(facings))],
		MaxHealth:     DefaultMaxHealth,
		CurrentHealth: DefaultMaxHealth,
		MaxMana:       DefaultMaxMana,
		CurrentMana:   DefaultMaxMana,
		Potions:       InitialPotions,
		Walls:         InitialWalls,
	}
}

func playerName(id ClientID) string { return "Wizard-" + shortID(string(id)) }

// shortID ULID 前缀是时间戳，取末尾 4 位更容易区分
func shortID(s string) string {
	if len(s) > 4 {
		s = s[len(s)-4:]
	}
	return s
}

// MoveResult 描述一次 UpdatePosition 的结果，由 World 转换为通知
type MoveResult struct {
	Moved        bool
	SceneChanged bool
	OldSceneX    int
	OldSceneY    int
	Transition   Direction // 同时跨两个轴时只记录 X 轴
}

// UpdatePosition 按位移更新格子坐标，越界时回绕到相邻场景。
// 朝向总是更新（非法符号保持原朝向）。
func (p *Player) UpdatePosition(dx, dy int, facing string) MoveResult {
	res := MoveResult{OldSceneX: p.SceneX, OldSceneY: p.SceneY}
	oldX, oldY := p.X, p.Y
	nx, ny := p.X+dx, p.Y+dy

	switch {
	case nx < 0:
		p.SceneX--
		p.X = GridWidth - 1
		res.SceneChanged = true
		res.Transition = DirWest
	case nx >= GridWidth:
		p.SceneX++
		p.X = 0
		res.SceneChanged = true
		res.Transition = DirEast
	default:
		p.X = nx
	}

	switch {
	case ny < 0:
		p.SceneY--
		p.Y = GridHeight - 1
		res.SceneChanged = true
		if res.Transition == DirNone {
			res.Transition = DirNorth
		}
	case ny >= GridHeight:
		p.SceneY++
		p.Y = 0
		res.SceneChanged = true
		if res.Transition == DirNone {
			res.Transition = DirSouth
		}
	default:
		p.Y = ny
	}

	p.face(facing)
	res.Moved = res.SceneChanged || p.X != oldX || p.Y != oldY
	return res
}

// face 只接受合法的朝向符号
func (p *Player) face(facing string) {
	if validFacing(facing) {
		p.Char = facing
	}
}

// DrinkPotion 消耗一瓶药水回复生命；没有药水时无任何效果
func (p *Player) DrinkPotion() bool {
	if p.Potions <= 0 {
		return false
	}
	p.Potions--
	p.CurrentHealth = min(p.MaxHealth, p.CurrentHealth+PotionHeal)
	return true
}

func (p *Player) CanAfford(cost int) bool { return p.CurrentMana >= cost }

// SpendMana 法力足够才扣除，不会部分扣除
func (p *Player) SpendMana(cost int) bool {
	if !p.CanAfford(cost) {
		return false
	}
	p.CurrentMana -= cost
	return true
}

func (p *Player) UseWallItem() bool {
	if p.Walls <= 0 {
		return false
	}
	p.Walls--
	return true
}

func (p *Player) AddWallItem() { p.Walls++ }

// RegenerateMana 累积回蓝，整数部分加到当前法力，返回实际增加量
func (p *Player) RegenerateMana(amount float64) int {
	p.manaRegen += amount
	if p.manaRegen < 1 {
		return 0
	}
	gain := int(p.manaRegen)
	p.manaRegen -= float64(gain)
	before := p.CurrentMana
	p.CurrentMana = min(p.MaxMana, p.CurrentMana+gain)
	return p.CurrentMana - before
}

func (p *Player) sceneKey() SceneKey { return SceneKey{X: p.SceneX, Y: p.SceneY} }

// Public 其他客户端可见的快照
func (p *Player) Public() protocol.PlayerPublic {
	return protocol.PlayerPublic{
		ID:     string(p.ID),
		Name:   p.Name,
		X:      p.X,
		Y:      p.Y,
		Char:   p.Char,
		SceneX: p.SceneX,
		SceneY: p.SceneY,
		IsWet:  p.IsWet,
	}
}

// Private 仅发给本人的完整快照
func (p *Player) Private() protocol.PlayerPrivate {
	return protocol.PlayerPrivate{
		ID:            string(p.ID),
		Name:          p.Name,
		SceneX:        p.SceneX,
		SceneY:        p.SceneY,
		X:             p.X,
		Y:             p.Y,
		Char:          p.Char,
		MaxHealth:     p.MaxHealth,
		CurrentHealth: p.CurrentHealth,
		MaxMana:       p.MaxMana,
		CurrentMana:   p.CurrentMana,
		Potions:       p.Potions,
		Gold:          p.Gold,
		Walls:         p.Walls,
		IsWet:         p.IsWet,
	}
}
