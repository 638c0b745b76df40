package game

func (w *World) onWater(p *Player) bool {
	s, ok := w.scenes[p.sceneKey()]
	if !ok {
		return false
	}
	t, _ := s.TileAt(p.X, p.Y)
	return t == TileWater
}

// soak 刷新湿身时间；原本是干的才发通知
func (w *World) soak(p *Player, key string) Outbox {
	p.wetSince = w.now
	if p.IsWet {
		return nil
	}
	p.IsWet = true
	var out Outbox
	out.notice(p.ID, key, SeveritySystem, nil)
	return out
}

func (w *World) dry(p *Player) Outbox {
	p.IsWet = false
	var out Outbox
	out.notice(p.ID, KeyBecameDry, SeveritySystem, nil)
	return out
}

// Weather 每 Tick 结算湿身：站在水里或淋雨保持湿，
// 进入室内立即变干，否则在 DryAfterTicks 后自然晾干（0 表示不会自然变干）。
func (w *World) Weather() Outbox {
	var out Outbox
	for _, id := range w.playerIDs() {
		p := w.players[id]
		s := w.sceneAt(p.sceneKey())
		switch {
		case w.onWater(p):
			out = append(out, w.soak(p, KeyBecameWetWater)...)
		case w.rules.Raining && !s.Indoors:
			out = append(out, w.soak(p, KeyBecameWetRain)...)
		case !p.IsWet:
		case s.Indoors:
			out = append(out, w.dry(p)...)
		case w.rules.DryAfterTicks > 0 && w.now-p.wetSince >= uint64(w.rules.DryAfterTicks):
			out = append(out, w.dry(p)...)
		}
	}
	return out
}

// rainIntensity 客户端画雨用；不下雨时为 0
func (w *World) rainIntensity() float64 {
	if !w.rules.Raining {
		return 0
	}
	return w.rules.RainIntensity
}
