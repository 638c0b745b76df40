package game

import (
	"wandworld/protocol"
)

// apply 在当前 Tick 内同步执行一个动作
func (w *World) apply(p *Player, in protocol.Intent) Outbox {
	d := in.Details
	switch in.Type {
	case protocol.IntentMove, protocol.IntentLook:
		return w.applyMove(p, in.Type, d)
	case protocol.IntentDrinkPotion:
		return w.applyDrinkPotion(p)
	case protocol.IntentSay:
		return w.applySay(p, d.Message)
	case protocol.IntentShout:
		return w.applyShout(p, d.Message)
	case protocol.IntentBuildWall:
		return w.applyBuildWall(p, d.DX, d.DY)
	case protocol.IntentDestroyWall:
		return w.applyDestroyWall(p, d.DX, d.DY)
	}
	return nil
}

// applyMove move 和 look 走同一个移动流程；只有带位移的 move 会被墙或精灵挡住。
// 挡路的精灵先尝试闪开，闪开后玩家照常进入目标格。
// 落脚在水上会湿身；look 之后感知一次周围的 NPC。
func (w *World) applyMove(p *Player, kind string, d protocol.IntentDetails) Outbox {
	var out Outbox
	facing := d.Facing()
	if kind == protocol.IntentMove && (d.DX != 0 || d.DY != 0) {
		s := w.sceneAt(p.sceneKey())
		tx, ty := p.X+d.DX, p.Y+d.DY
		if t, ok := s.TileAt(tx, ty); ok && t == TileWall {
			p.face(facing)
			out.notice(p.ID, KeyBlockedWall, SeverityBad, nil)
			return out
		}
		if n := w.npcAt(s, tx, ty); n != nil {
			if !w.evade(n) {
				p.face(facing)
				out.notice(p.ID, KeyPixieBlockedPath, SeverityBad, map[string]any{"pixieName": n.Name})
				return out
			}
			out.notice(p.ID, KeyPixieMovedAway, SeveritySystem, map[string]any{"pixieName": n.Name})
		}
	}
	_, moved := w.MovePlayer(p, d.DX, d.DY, facing)
	out = append(out, moved...)
	if w.onWater(p) {
		out = append(out, w.soak(p, KeyBecameWetWater)...)
	}
	if kind == protocol.IntentLook {
		out = append(out, w.sense(p)...)
	}
	return out
}

func (w *World) applyDrinkPotion(p *Player) Outbox {
	var out Outbox
	if p.DrinkPotion() {
		out.notice(p.ID, KeyPotionSuccess, SeverityGood, nil)
	} else {
		out.notice(p.ID, KeyPotionEmpty, SeverityBad, nil)
	}
	return out
}

func chatEvent(p *Player, msg, channel string) protocol.ChatEvent {
	return protocol.ChatEvent{
		SenderID:    string(p.ID),
		SenderName:  p.Name,
		Message:     msg,
		Channel:     channel,
		SceneCoords: p.sceneKey().String(),
	}
}

// applySay 发给当前场景所有人（包括自己）
func (w *World) applySay(p *Player, msg string) Outbox {
	if msg == "" {
		return nil
	}
	s, ok := w.scenes[p.sceneKey()]
	if !ok {
		return nil
	}
	var out Outbox
	chat := chatEvent(p, msg, protocol.ChannelSay)
	for _, id := range s.Members() {
		out.send(id, protocol.MsgChatEvent, chat)
	}
	return out
}

// applyShout 消耗法力，发给周围 3x3 场景内的所有玩家
func (w *World) applyShout(p *Player, msg string) Outbox {
	if msg == "" {
		return nil
	}
	var out Outbox
	cost := w.rules.ShoutManaCost
	if !p.SpendMana(cost) {
		out.notice(p.ID, KeyShoutNoMana, SeverityBad, map[string]any{"manaCost": cost})
		return out
	}
	chat := chatEvent(p, msg, protocol.ChannelShout)
	for _, id := range w.playerIDs() {
		t := w.players[id]
		if abs(t.SceneX-p.SceneX) <= 1 && abs(t.SceneY-p.SceneY) <= 1 {
			out.send(id, protocol.MsgChatEvent, chat)
		}
	}
	out.notice(p.ID, KeyShoutBoom, SeveritySystem, map[string]any{"manaCost": cost})
	return out
}

// occupied 是否有玩家站在 (x,y)
func (w *World) occupied(s *Scene, x, y int) bool {
	for _, id := range s.Members() {
		if p, ok := w.players[id]; ok && p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

func (w *World) applyBuildWall(p *Player, dx, dy int) Outbox {
	var out Outbox
	s := w.sceneAt(p.sceneKey())
	tx, ty := p.X+dx, p.Y+dy
	t, ok := s.TileAt(tx, ty)
	switch {
	case !ok:
		out.notice(p.ID, KeyBuildOutOfBounds, SeverityBad, nil)
	case t != TileFloor, w.occupied(s, tx, ty), w.npcAt(s, tx, ty) != nil:
		out.notice(p.ID, KeyBuildObstructed, SeverityBad, nil)
	case !p.UseWallItem():
		out.notice(p.ID, KeyBuildNoMaterials, SeverityBad, nil)
	default:
		s.SetTile(tx, ty, TileWall)
		out.notice(p.ID, KeyBuildSuccess, SeverityGood, map[string]any{"walls": p.Walls})
	}
	return out
}

func (w *World) applyDestroyWall(p *Player, dx, dy int) Outbox {
	var out Outbox
	s := w.sceneAt(p.sceneKey())
	tx, ty := p.X+dx, p.Y+dy
	t, ok := s.TileAt(tx, ty)
	cost := w.rules.DestroyWallManaCost
	switch {
	case !ok:
		out.notice(p.ID, KeyDestroyOutOfBounds, SeverityBad, nil)
	case t != TileWall:
		out.notice(p.ID, KeyDestroyNoWall, SeverityBad, nil)
	case !p.SpendMana(cost):
		out.notice(p.ID, KeyDestroyNoMana, SeverityBad, map[string]any{"manaCost": cost})
	default:
		p.AddWallItem()
		s.SetTile(tx, ty, TileFloor)
		out.notice(p.ID, KeyDestroySuccess, SeverityGood, map[string]any{
			"walls":    p.Walls,
			"manaCost": cost,
		})
	}
	return out
}
