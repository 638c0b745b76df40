package server

import (
	"encoding/json"
	"net/http"

	"wandworld/game"
)

// rulesPatch 部分更新，未给出的字段保持不变
type rulesPatch struct {
	ViewDistance        *int     `json:"viewDistance,omitempty"`
	ShoutManaCost       *int     `json:"shoutManaCost,omitempty"`
	DestroyWallManaCost *int     `json:"destroyWallManaCost,omitempty"`
	ManaRegenPerCycle   *float64 `json:"manaRegenPerCycle,omitempty"`
	TicksPerManaRegen   *int     `json:"ticksPerManaRegen,omitempty"`

	Raining       *bool    `json:"raining,omitempty"`
	RainIntensity *float64 `json:"rainIntensity,omitempty"`
	DryAfterTicks *int     `json:"dryAfterTicks,omitempty"`

	PixieWanderChance *float64 `json:"pixieWanderChance,omitempty"`
	PixieManaBoost    *float64 `json:"pixieManaBoost,omitempty"`
	PixieBoostRange   *int     `json:"pixieBoostRange,omitempty"`
	TicksPerSensory   *int     `json:"ticksPerSensory,omitempty"`
}

// apply 把给出的字段覆盖到 r 上
func (p rulesPatch) apply(r game.Rules) game.Rules {
	setInt(&r.ViewDistance, p.ViewDistance)
	setInt(&r.ShoutManaCost, p.ShoutManaCost)
	setInt(&r.DestroyWallManaCost, p.DestroyWallManaCost)
	setFloat(&r.ManaRegenPerCycle, p.ManaRegenPerCycle)
	setInt(&r.TicksPerManaRegen, p.TicksPerManaRegen)
	if p.Raining != nil {
		r.Raining = *p.Raining
	}
	setFloat(&r.RainIntensity, p.RainIntensity)
	setInt(&r.DryAfterTicks, p.DryAfterTicks)
	setFloat(&r.PixieWanderChance, p.PixieWanderChance)
	setFloat(&r.PixieManaBoost, p.PixieManaBoost)
	setInt(&r.PixieBoostRange, p.PixieBoostRange)
	setInt(&r.TicksPerSensory, p.TicksPerSensory)
	return r
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminRules 规则的读取与热更新
// GET  /admin/rules 返回当前规则
// POST /admin/rules 以 JSON 载荷更新部分字段
func (s *Server) HandleAdminRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.game.Rules())
	case http.MethodPost:
		var body rulesPatch
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rules := body.apply(s.game.Rules())
		if err := s.game.UpdateRules(rules); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, rules)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":           s.game.CurrentTick(),
		"players":        s.game.PlayerCount(),
		"queued_intents": s.game.QueuedIntents(),
		"connections":    s.hub.Len(),
		"metrics":        s.game.Metrics().Snapshot(),
	})
}
