package game

import (
	"sort"

	"github.com/oklog/ulid/v2"

	"wandworld/protocol"
)

// NPCID 非玩家角色标识
type NPCID string

const PixieChar = "*"

// 出生时找空位的尝试次数，找不到就放弃这只精灵
const spawnAttempts = 200

// 感官类别，通知严重级别为 "sensory-" + 类别
const (
	SenseSight = "sight"
	SenseSound = "sound"
	SenseSmell = "smell"
	SenseMagic = "magic"
)

// Cue 一条感官线索。Relevance 决定触发概率；
// Range 是曼哈顿距离上限，视觉线索只看可见性。
type Cue struct {
	Key       string
	Relevance float64
	Range     int
}

var pixieCues = map[string][]Cue{
	SenseSight: {
		{Key: KeyPixieShimmer, Relevance: 0.8, Range: 8},
		{Key: KeyPixieDart, Relevance: 0.6, Range: 8},
	},
	SenseSound: {
		{Key: KeyPixieChime, Relevance: 0.7, Range: 5},
		{Key: KeyPixieWings, Relevance: 0.4, Range: 3},
	},
	SenseSmell: {
		{Key: KeyPixieOzone, Relevance: 0.3, Range: 2},
	},
	SenseMagic: {
		{Key: KeyPixieAura, Relevance: 0.9, Range: 4},
	},
}

// NPC 由服务端驱动的角色；目前只有法力精灵。
// 只在自己的场景内活动，不会跨场景。
type NPC struct {
	ID     NPCID
	Name   string
	Char   string
	SceneX int
	SceneY int
	X      int
	Y      int

	cues map[string][]Cue
}

func newPixie(id NPCID, key SceneKey, x, y int) *NPC {
	return &NPC{
		ID:     id,
		Name:   "Pixie-" + shortID(string(id)),
		Char:   PixieChar,
		SceneX: key.X,
		SceneY: key.Y,
		X:      x,
		Y:      y,
		cues:   pixieCues,
	}
}

func (n *NPC) sceneKey() SceneKey { return SceneKey{X: n.SceneX, Y: n.SceneY} }

func (n *NPC) Public() protocol.NPCPublic {
	return protocol.NPCPublic{
		ID:     string(n.ID),
		Name:   n.Name,
		Char:   n.Char,
		X:      n.X,
		Y:      n.Y,
		SceneX: n.SceneX,
		SceneY: n.SceneY,
	}
}

func (w *World) NPCCount() int { return len(w.npcs) }

func (w *World) NPC(id NPCID) (*NPC, bool) {
	n, ok := w.npcs[id]
	return n, ok
}

func (w *World) npcIDs() []NPCID {
	ids := make([]NPCID, 0, len(w.npcs))
	for id := range w.npcs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// spawnPixies 在出生场景的空地上放置精灵，避开墙、其他精灵和出生点。
// ID 的熵取自世界的随机源，同一种子生成同样的精灵。
func (w *World) spawnPixies(count int) {
	if count <= 0 {
		return
	}
	key := SceneKey{}
	s := w.sceneAt(key)
	for i := 0; i < count; i++ {
		for attempt := 0; attempt < spawnAttempts; attempt++ {
			x, y := w.rng.Intn(GridWidth), w.rng.Intn(GridHeight)
			if !w.npcCanEnter(s, x, y) {
				continue
			}
			n := newPixie(NPCID(ulid.MustNew(0, w.rng).String()), key, x, y)
			w.npcs[n.ID] = n
			s.addNPC(n.ID)
			break
		}
	}
}

// npcAt 场景内 (x,y) 上的 NPC；越界或没有时返回 nil
func (w *World) npcAt(s *Scene, x, y int) *NPC {
	if !inBounds(x, y) {
		return nil
	}
	for _, id := range s.NPCs() {
		if n := w.npcs[id]; n.X == x && n.Y == y {
			return n
		}
	}
	return nil
}

func isSpawnTile(k SceneKey, x, y int) bool {
	return k == (SceneKey{}) && x == GridWidth/2 && y == GridHeight/2
}

// npcCanEnter 目标格在界内、不是墙、不是出生点、没有其他角色
func (w *World) npcCanEnter(s *Scene, x, y int) bool {
	t, ok := s.TileAt(x, y)
	if !ok || t == TileWall || isSpawnTile(s.Key, x, y) {
		return false
	}
	return w.npcAt(s, x, y) == nil && !w.occupied(s, x, y)
}

// evade 被玩家撞上时随机闪到一个相邻空格；无处可去返回 false
func (w *World) evade(n *NPC) bool {
	s := w.sceneAt(n.sceneKey())
	var free [][2]int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if w.npcCanEnter(s, n.X+dx, n.Y+dy) {
				free = append(free, [2]int{n.X + dx, n.Y + dy})
			}
		}
	}
	if len(free) == 0 {
		return false
	}
	to := free[w.rng.Intn(len(free))]
	n.X, n.Y = to[0], to[1]
	return true
}

// WanderNPCs 每只精灵按概率向随机相邻格走一步，目标不可进入时原地不动
func (w *World) WanderNPCs() {
	chance := w.rules.PixieWanderChance
	if chance <= 0 {
		return
	}
	for _, id := range w.npcIDs() {
		n := w.npcs[id]
		if w.rng.Float64() >= chance {
			continue
		}
		dx, dy := w.rng.Intn(3)-1, w.rng.Intn(3)-1
		if dx == 0 && dy == 0 {
			continue
		}
		if w.npcCanEnter(w.sceneAt(n.sceneKey()), n.X+dx, n.Y+dy) {
			n.X += dx
			n.Y += dy
		}
	}
}

// pixiesNear 同场景内曼哈顿距离不超过 r 的精灵数
func (w *World) pixiesNear(p *Player, r int) int {
	s, ok := w.scenes[p.sceneKey()]
	if !ok {
		return 0
	}
	count := 0
	for _, id := range s.NPCs() {
		n := w.npcs[id]
		if abs(n.X-p.X)+abs(n.Y-p.Y) <= r {
			count++
		}
	}
	return count
}
