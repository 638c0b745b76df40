package game

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wandworld/protocol"
)

func newTestGame(t *testing.T, s Sender) *Game {
	t.Helper()
	return New(Options{
		TickInterval: 10 * time.Millisecond,
		World:        WorldConfig{Rules: DefaultRules(), SpawnShrine: true, Seed: 1},
		Sender:       s,
		Logger:       zaptest.NewLogger(t).Sugar(),
	})
}

func TestConnectSendsInitialStateThenWelcome(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)

	require.NoError(t, g.Connect("a"))
	out := s.outbox()
	require.Len(t, out, 2)
	assert.Equal(t, protocol.MsgInitialState, out[0].Envelope.Type)
	assert.Equal(t, protocol.MsgSystemNotice, out[1].Envelope.Type)
	welcome := out[1].Envelope.Payload.(protocol.SystemNotice)
	assert.Equal(t, KeyWelcome, welcome.MessageKey)
	assert.Equal(t, SeverityWelcome, welcome.Severity)

	st := out[0].Envelope.Payload.(protocol.InitialState)
	assert.Equal(t, "a", st.Player.ID)
	assert.InDelta(t, 0.01, st.TickRate, 1e-9)

	s.reset()
	require.NoError(t, g.Connect("b"))
	entered := payloads[protocol.PlayerPublic](s.outbox(), "a", protocol.MsgEnteredScene)
	require.Len(t, entered, 1)
	assert.Equal(t, "b", entered[0].ID)
	assert.Equal(t, 2, g.PlayerCount())
}

func TestConnectRejectsDuplicate(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.Connect("a"))
	assert.ErrorIs(t, g.Connect("a"), ErrDuplicateClient)
	assert.Equal(t, 1, g.PlayerCount())
}

func TestDisconnectTwice(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)
	require.NoError(t, g.Connect("a"))
	require.NoError(t, g.Connect("b"))
	s.reset()

	assert.True(t, g.Disconnect("b"))
	assert.Equal(t, []ClientID{"a"}, recipients(s.outbox(), protocol.MsgExitedScene))
	assert.False(t, g.Disconnect("b"))
	assert.Equal(t, int64(1), g.Metrics().Disconnects)
}

func TestSubmitAcks(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.Connect("a"))

	ack := g.Submit("a", move(1, 0, ""))
	assert.True(t, ack.Success)
	ack = g.Submit("a", protocol.Intent{Type: "teleport"})
	assert.False(t, ack.Success)
	ack = g.Submit("ghost", move(1, 0, ""))
	assert.False(t, ack.Success)

	snap := g.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap["intents_queued"])
	assert.Equal(t, int64(2), snap["intents_rejected"])
}

// 连接后向西走出场景，下一个 Tick 的快照与通知
func TestWalkWestEndToEnd(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)
	require.NoError(t, g.Connect("a"))
	require.NoError(t, g.Connect("b"))
	s.reset()

	ack := g.Submit("a", move(-11, 0, FacingWest))
	require.True(t, ack.Success)
	g.Tick()
	out := s.outbox()

	updates := payloads[protocol.WorldUpdate](out, "a", protocol.MsgWorldUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, uint64(1), updates[0].Tick)
	assert.Equal(t, 19, updates[0].Self.X)
	assert.Equal(t, 7, updates[0].Self.Y)
	assert.Equal(t, -1, updates[0].Self.SceneX)
	assert.Equal(t, 0, updates[0].Self.SceneY)
	assert.Empty(t, updates[0].VisibleOthers)

	notices := payloads[protocol.SystemNotice](out, "a", protocol.MsgSystemNotice)
	require.Len(t, notices, 1)
	assert.Equal(t, KeyTransitionWest, notices[0].MessageKey)
	assert.Empty(t, payloads[protocol.SystemNotice](out, "b", protocol.MsgSystemNotice))
	assert.Len(t, payloads[protocol.PlayerExited](out, "b", protocol.MsgExitedScene), 1)
	assert.Len(t, payloads[protocol.WorldUpdate](out, "b", protocol.MsgWorldUpdate), 1)

	// 通知先于快照
	var order []string
	for _, m := range out {
		if m.To == "a" {
			order = append(order, m.Envelope.Type)
		}
	}
	assert.Equal(t, []string{protocol.MsgSystemNotice, protocol.MsgWorldUpdate}, order)
}

func TestTickWithoutPlayersSendsNothing(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)
	g.Tick()
	assert.Empty(t, s.outbox())
	assert.Equal(t, uint64(1), g.CurrentTick())
	assert.Equal(t, int64(1), g.Metrics().TickCount)
}

func TestTickRegeneratesMana(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.Connect("a"))
	p, _ := g.world.Player("a")
	p.CurrentMana = 0

	for i := 0; i < 5; i++ {
		g.Tick()
	}
	assert.Equal(t, 0, p.CurrentMana, "first regen cycle only accumulates half a point")
	g.Tick()
	assert.Equal(t, 1, p.CurrentMana)
}

func TestUpdateRules(t *testing.T) {
	g := newTestGame(t, nil)
	r := g.Rules()
	r.ShoutManaCost = 1
	require.NoError(t, g.UpdateRules(r))
	assert.Equal(t, 1, g.Rules().ShoutManaCost)

	r.TicksPerManaRegen = 0
	assert.Error(t, g.UpdateRules(r))
	assert.Equal(t, 3, g.Rules().TicksPerManaRegen)
}

func TestDeliverClassifiesFailures(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)
	require.NoError(t, g.Connect("a"))
	require.NoError(t, g.Connect("b"))
	require.NoError(t, g.Connect("c"))
	s.failFor["b"] = ErrNotConnected
	s.failFor["c"] = errors.New("buffer full")
	s.reset()

	g.Tick()
	assert.Len(t, payloads[protocol.WorldUpdate](s.outbox(), "a", protocol.MsgWorldUpdate), 1)
	assert.Equal(t, int64(1), g.Metrics().StaleSkipped)
	assert.Equal(t, int64(1), g.Metrics().DeliveryFailures)
}

func TestStartTwice(t *testing.T) {
	g := newTestGame(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, g.Start(ctx))
	assert.ErrorIs(t, g.Start(ctx), ErrAlreadyStarted)

	cancel()
	<-g.Done()
}

func TestStartRunsUntilCancelled(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.Connect("a"))
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, g.Start(ctx))
	require.Eventually(t, func() bool { return g.CurrentTick() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tick loop did not stop")
	}
	assert.NoError(t, g.Err())
}

type panicSender struct {
	armed atomic.Bool
}

func (s *panicSender) Send(ClientID, protocol.Envelope) error {
	if s.armed.Load() {
		panic("boom")
	}
	return nil
}

func TestTickPanicHaltsLoop(t *testing.T) {
	s := &panicSender{}
	g := newTestGame(t, s)
	require.NoError(t, g.Connect("a"))
	s.armed.Store(true)

	require.NoError(t, g.Start(context.Background()))
	select {
	case <-g.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tick loop did not halt")
	}
	require.Error(t, g.Err())
	assert.Contains(t, g.Err().Error(), "boom")

	// 锁已释放，其他操作仍可进行
	assert.Equal(t, 1, g.PlayerCount())
}

// 从 (7,7) 向西踩进神殿旁的水里
func TestWalkIntoWaterEndToEnd(t *testing.T) {
	s := newRecordingSender()
	g := newTestGame(t, s)
	require.NoError(t, g.Connect("a"))
	p, _ := g.world.Player("a")
	p.X = 7
	s.reset()

	require.True(t, g.Submit("a", move(-1, 0, FacingWest)).Success)
	g.Tick()
	out := s.outbox()
	assert.Equal(t, []string{KeyBecameWetWater}, noticeKeys(out, "a"))
	upd := payloads[protocol.WorldUpdate](out, "a", protocol.MsgWorldUpdate)
	require.Len(t, upd, 1)
	assert.Equal(t, 6, upd[0].Self.X)
	assert.True(t, upd[0].Self.IsWet)
}

func TestTickReportsVisibleNPCs(t *testing.T) {
	s := newRecordingSender()
	g := New(Options{
		World:  WorldConfig{Rules: DefaultRules(), Seed: 5, Pixies: 3},
		Sender: s,
		Logger: zaptest.NewLogger(t).Sugar(),
	})
	r := g.Rules()
	r.ViewDistance = GridWidth
	require.NoError(t, g.UpdateRules(r))

	require.NoError(t, g.Connect("a"))
	st := payloads[protocol.InitialState](s.outbox(), "a", protocol.MsgInitialState)
	require.Len(t, st, 1)
	assert.Len(t, st[0].NPCs, 3)

	s.reset()
	g.Tick()
	upd := payloads[protocol.WorldUpdate](s.outbox(), "a", protocol.MsgWorldUpdate)
	require.Len(t, upd, 1)
	assert.Len(t, upd[0].VisibleNPCs, 3)
}

func TestTickSensoryCadence(t *testing.T) {
	run := func(every int) int {
		s := newRecordingSender()
		g := newTestGame(t, s)
		r := g.Rules()
		r.TicksPerSensory = every
		r.PixieWanderChance = 0
		require.NoError(t, g.UpdateRules(r))
		require.NoError(t, g.Connect("a"))
		placePixie(g.world, "n1", 10, 8)

		for i := 0; i < 200; i++ {
			g.Tick()
		}
		return len(sensoryNotices(s.outbox(), "a"))
	}
	assert.Positive(t, run(1))
	assert.Zero(t, run(1000))
}

func TestQueuedIntents(t *testing.T) {
	g := newTestGame(t, nil)
	require.NoError(t, g.Connect("a"))
	require.NoError(t, g.Connect("b"))
	g.Submit("a", move(1, 0, ""))
	g.Submit("a", move(0, 1, ""))
	g.Submit("b", move(0, 1, ""))
	assert.Equal(t, 2, g.QueuedIntents())

	g.Tick()
	assert.Zero(t, g.QueuedIntents())
}
