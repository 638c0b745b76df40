package game

import "wandworld/protocol"

// IsVisible 同场景且两个轴上的距离都不超过视距（方框，不是圆）
func (w *World) IsVisible(observer, target *Player) bool {
	if observer == nil || target == nil {
		return false
	}
	if observer.ID == target.ID {
		return false
	}
	if observer.sceneKey() != target.sceneKey() {
		return false
	}
	d := w.rules.ViewDistance
	return abs(observer.X-target.X) <= d && abs(observer.Y-target.Y) <= d
}

// VisiblePlayersFor 只扫描观察者当前场景的成员
func (w *World) VisiblePlayersFor(observer *Player) []protocol.PlayerPublic {
	out := []protocol.PlayerPublic{}
	if observer == nil {
		return out
	}
	s, ok := w.scenes[observer.sceneKey()]
	if !ok {
		return out
	}
	for _, id := range s.Members() {
		target, ok := w.players[id]
		if ok && w.IsVisible(observer, target) {
			out = append(out, target.Public())
		}
	}
	return out
}

// IsNPCVisible 与玩家相同的方框规则
func (w *World) IsNPCVisible(observer *Player, n *NPC) bool {
	if observer == nil || n == nil || observer.sceneKey() != n.sceneKey() {
		return false
	}
	d := w.rules.ViewDistance
	return abs(observer.X-n.X) <= d && abs(observer.Y-n.Y) <= d
}

func (w *World) VisibleNPCsFor(observer *Player) []protocol.NPCPublic {
	out := []protocol.NPCPublic{}
	if observer == nil {
		return out
	}
	s, ok := w.scenes[observer.sceneKey()]
	if !ok {
		return out
	}
	for _, id := range s.NPCs() {
		if n := w.npcs[id]; w.IsNPCVisible(observer, n) {
			out = append(out, n.Public())
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
