package game

import (
	"fmt"
	"sort"

	"wandworld/protocol"
)

// SceneKey 场景坐标，无界整数
type SceneKey struct {
	X int
	Y int
}

func (k SceneKey) String() string { return fmt.Sprintf("(%d,%d)", k.X, k.Y) }

// Tile 格子类型
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TileWater
)

// Scene 固定大小的格子地图，空间划分与广播范围的单位。
// 首次有玩家进入时创建，之后一直保留。
type Scene struct {
	Key     SceneKey
	Name    string
	Indoors bool // 室内不下雨，湿身立即变干
	members map[ClientID]struct{}
	npcs    map[NPCID]struct{}
	terrain [GridHeight][GridWidth]Tile
}

// SceneNamer 根据坐标生成场景名
type SceneNamer func(x, y int) string

func defaultSceneName(x, y int) string { return fmt.Sprintf("Area (%d,%d)", x, y) }

func newScene(key SceneKey, namer SceneNamer) *Scene {
	if namer == nil {
		namer = defaultSceneName
	}
	return &Scene{
		Key:     key,
		Name:    namer(key.X, key.Y),
		members: make(map[ClientID]struct{}),
		npcs:    make(map[NPCID]struct{}),
	}
}

func (s *Scene) Add(id ClientID) { s.members[id] = struct{}{} }
func (s *Scene) Remove(id ClientID) { delete(s.members, id) }
func (s *Scene) Len() int { return len(s.members) }

func (s *Scene) Has(id ClientID) bool {
	_, ok := s.members[id]
	return ok
}

// Members 返回成员的有序副本，遍历期间可以安全修改场景
func (s *Scene) Members() []ClientID {
	out := make([]ClientID, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Scene) addNPC(id NPCID) { s.npcs[id] = struct{}{} }

// NPCs 有序副本
func (s *Scene) NPCs() []NPCID {
	out := make([]NPCID, 0, len(s.npcs))
	for id := range s.npcs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func inBounds(x, y int) bool {
	return x >= 0 && x < GridWidth && y >= 0 && y < GridHeight
}

// TileAt 越界时返回 false
func (s *Scene) TileAt(x, y int) (Tile, bool) {
	if !inBounds(x, y) {
		return TileFloor, false
	}
	return s.terrain[y][x], true
}

func (s *Scene) SetTile(x, y int, t Tile) bool {
	if !inBounds(x, y) {
		return false
	}
	s.terrain[y][x] = t
	return true
}

// Terrain 只列出墙和水，地板是默认值
func (s *Scene) Terrain() protocol.Terrain {
	out := protocol.Terrain{Walls: []protocol.Tile{}, Water: []protocol.Tile{}}
	for y := range s.terrain {
		for x, t := range s.terrain[y] {
			switch t {
			case TileWall:
				out.Walls = append(out.Walls, protocol.Tile{X: x, Y: y})
			case TileWater:
				out.Water = append(out.Water, protocol.Tile{X: x, Y: y})
			}
		}
	}
	return out
}

const shrineRadius = 2

// buildSpawnShrine 在出生点周围围一圈墙，南侧留门，两侧放几格水
func (s *Scene) buildSpawnShrine() {
	mx, my := GridWidth/2, GridHeight/2
	for i := -shrineRadius; i <= shrineRadius; i++ {
		s.SetTile(mx+i, my-shrineRadius, TileWall)
		s.SetTile(mx+i, my+shrineRadius, TileWall)
		if i > -shrineRadius && i < shrineRadius {
			s.SetTile(mx-shrineRadius, my+i, TileWall)
			s.SetTile(mx+shrineRadius, my+i, TileWall)
		}
	}
	s.SetTile(mx, my+shrineRadius, TileFloor)
	s.SetTile(mx-(shrineRadius+2), my, TileWater)
	s.SetTile(mx-(shrineRadius+2), my+1, TileWater)
	s.SetTile(mx+(shrineRadius+2), my-1, TileWater)
}
