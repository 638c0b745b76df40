package game

// 线索触发概率的缩放系数
const (
	sightCueScale  = 0.05
	remoteCueScale = 0.5
)

// 看不见时按此顺序尝试其他感官，每只 NPC 最多触发一种
var remoteSenses = []string{SenseSound, SenseSmell, SenseMagic}

// sense 给玩家一次感知同场景 NPC 的机会。
// 看得见的 NPC 只掷视觉线索；看不见时按距离衰减掷听觉、嗅觉、魔法线索。
// 同一次感知内同一个键只出现一次。
func (w *World) sense(p *Player) Outbox {
	s, ok := w.scenes[p.sceneKey()]
	if !ok {
		return nil
	}
	var out Outbox
	emitted := make(map[string]bool)
	for _, id := range s.NPCs() {
		n := w.npcs[id]
		if w.IsNPCVisible(p, n) {
			for _, c := range n.cues[SenseSight] {
				if emitted[c.Key] || w.rng.Float64() >= c.Relevance*sightCueScale {
					continue
				}
				emitted[c.Key] = true
				out.notice(p.ID, c.Key, SeveritySensory+SenseSight, map[string]any{"npcName": n.Name})
				break
			}
			continue
		}

		dist := abs(n.X-p.X) + abs(n.Y-p.Y)
	senses:
		for _, sense := range remoteSenses {
			for _, c := range n.cues[sense] {
				if dist > c.Range || emitted[c.Key] {
					continue
				}
				chance := c.Relevance * (1 - float64(dist)/float64(c.Range+1)) * remoteCueScale
				if w.rng.Float64() >= chance {
					continue
				}
				emitted[c.Key] = true
				out.notice(p.ID, c.Key, SeveritySensory+sense, map[string]any{
					"npcName":   n.Name,
					"direction": generalDirection(n.X-p.X, n.Y-p.Y),
				})
				break senses
			}
		}
	}
	return out
}

// SensoryPass 所有玩家各感知一次
func (w *World) SensoryPass() Outbox {
	if len(w.npcs) == 0 {
		return nil
	}
	var out Outbox
	for _, id := range w.playerIDs() {
		out = append(out, w.sense(w.players[id])...)
	}
	return out
}

// generalDirection 粗略方位，y 轴向南增长
func generalDirection(dx, dy int) string {
	if dx == 0 && dy == 0 {
		return "nearby"
	}
	ns, ew := "north", "west"
	if dy > 0 {
		ns = "south"
	}
	if dx > 0 {
		ew = "east"
	}
	switch {
	case abs(dx) == abs(dy):
		return "to the " + ns + ew
	case abs(dx) > abs(dy):
		return "to the " + ew
	default:
		return "to the " + ns
	}
}
