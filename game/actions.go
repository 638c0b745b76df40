package game

import (
	"errors"
	"sort"

	"wandworld/protocol"
)

var (
	ErrUnknownClient = errors.New("unknown client")
	ErrUnknownIntent = errors.New("unknown intent")
)

var knownIntents = map[string]bool{
	protocol.IntentMove:        true,
	protocol.IntentLook:        true,
	protocol.IntentDrinkPotion: true,
	protocol.IntentSay:         true,
	protocol.IntentShout:       true,
	protocol.IntentBuildWall:   true,
	protocol.IntentDestroyWall: true,
}

// KnownIntent 入队前校验意图类型
func KnownIntent(kind string) bool { return knownIntents[kind] }

// ActionQueue 每个客户端最多一个待处理意图。
// 同一 Tick 内再次提交会覆盖之前的意图（后写者胜）。
type ActionQueue struct {
	pending map[ClientID]protocol.Intent
}

func NewActionQueue() *ActionQueue {
	return &ActionQueue{pending: make(map[ClientID]protocol.Intent)}
}

// Put 写入意图，返回是否覆盖了尚未执行的旧意图
func (q *ActionQueue) Put(id ClientID, in protocol.Intent) bool {
	_, replaced := q.pending[id]
	q.pending[id] = in
	return replaced
}

func (q *ActionQueue) Drop(id ClientID) { delete(q.pending, id) }

func (q *ActionQueue) Len() int { return len(q.pending) }

// Drain 整体换出待处理表；之后到达的意图进入新表，留到下一个 Tick
func (q *ActionQueue) Drain() map[ClientID]protocol.Intent {
	taken := q.pending
	q.pending = make(map[ClientID]protocol.Intent)
	return taken
}

// QueueAction 校验并入队；回执只说明是否入队，不代表游戏效果
func (w *World) QueueAction(id ClientID, in protocol.Intent) (protocol.IntentAck, error) {
	if _, ok := w.players[id]; !ok {
		return newAck(false, KeyPlayerUnknown, nil), ErrUnknownClient
	}
	if !KnownIntent(in.Type) {
		return newAck(false, KeyUnknownCommand, map[string]any{"actionWord": in.Type}), ErrUnknownIntent
	}
	w.queue.Put(id, in)
	return newAck(true, KeyActionQueued, nil), nil
}

// ProcessActions 换出待处理表并按客户端 ID 顺序执行。
// 玩家在入队后已断开的动作静默跳过。
func (w *World) ProcessActions() (applied, stale int, out Outbox) {
	taken := w.queue.Drain()
	ids := make([]ClientID, 0, len(taken))
	for id := range taken {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		p, ok := w.players[id]
		if !ok {
			stale++
			continue
		}
		out = append(out, w.apply(p, taken[id])...)
		applied++
	}
	return applied, stale, out
}
