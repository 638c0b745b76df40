package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wandworld/protocol"
)

// placePixie 在场景 (0,0) 的固定位置放一只精灵
func placePixie(w *World, id NPCID, x, y int) *NPC {
	n := newPixie(id, SceneKey{}, x, y)
	w.npcs[id] = n
	w.sceneAt(SceneKey{}).addNPC(id)
	return n
}

func pixieWorld(seed int64) *World {
	return NewWorld(WorldConfig{Rules: DefaultRules(), SpawnShrine: true, Seed: seed, Pixies: 3})
}

func npcPositions(w *World) map[NPCID][2]int {
	pos := make(map[NPCID][2]int)
	for id, n := range w.npcs {
		pos[id] = [2]int{n.X, n.Y}
	}
	return pos
}

func TestSpawnPixies(t *testing.T) {
	w := pixieWorld(7)
	require.Equal(t, 3, w.NPCCount())
	s, ok := w.Scene(0, 0)
	require.True(t, ok)
	require.Len(t, s.NPCs(), 3)

	seen := make(map[[2]int]bool)
	for _, id := range s.NPCs() {
		n, ok := w.NPC(id)
		require.True(t, ok)
		tile, ok := s.TileAt(n.X, n.Y)
		require.True(t, ok)
		assert.NotEqual(t, TileWall, tile)
		assert.False(t, n.X == GridWidth/2 && n.Y == GridHeight/2, "spawn point stays free")
		assert.False(t, seen[[2]int{n.X, n.Y}], "one pixie per tile")
		seen[[2]int{n.X, n.Y}] = true
		assert.Equal(t, PixieChar, n.Char)
		assert.True(t, strings.HasPrefix(n.Name, "Pixie-"))
		assert.Equal(t, "Pixie-"+string(id)[len(id)-4:], n.Name)
	}

	assert.Equal(t, npcPositions(w), npcPositions(pixieWorld(7)), "same seed, same pixies")
}

func TestNoPixiesUnlessConfigured(t *testing.T) {
	w := openWorld()
	assert.Zero(t, w.NPCCount())
	_, ok := w.Scene(0, 0)
	assert.False(t, ok, "scene is still created lazily")
}

func TestVisibleNPCsFor(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	near := placePixie(w, "n1", 18, 7)
	placePixie(w, "n2", 19, 7)

	got := w.VisibleNPCsFor(a)
	require.Len(t, got, 1)
	assert.Equal(t, near.Public(), got[0])
	assert.True(t, w.IsNPCVisible(a, near))

	moveTo(w, a, 1, 0)
	got = w.VisibleNPCsFor(a)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, w.IsNPCVisible(a, near))
}

func TestSnapshotCarriesVisibleNPCs(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	placePixie(w, "n1", 12, 7)

	upd := w.Snapshot(a, 1)
	require.Len(t, upd.VisibleNPCs, 1)
	assert.Equal(t, PixieChar, upd.VisibleNPCs[0].Char)
	st := w.InitialState(a, 0.75)
	assert.Len(t, st.NPCs, 1)
}

func TestMoveIntoPixieDodges(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	n := placePixie(w, "n1", 11, 7)

	out := queueAndRun(t, w, "a", move(1, 0, FacingEast))
	assert.Equal(t, 11, a.X, "move goes through once the pixie moves")
	assert.Equal(t, []string{KeyPixieMovedAway}, noticeKeys(out, "a"))
	notices := payloads[protocol.SystemNotice](out, "a", protocol.MsgSystemNotice)
	assert.Equal(t, n.Name, notices[0].Placeholders["pixieName"])

	assert.False(t, n.X == 11 && n.Y == 7)
	assert.False(t, n.X == 10 && n.Y == 7, "never onto the player's old tile")
	assert.LessOrEqual(t, abs(n.X-11), 1)
	assert.LessOrEqual(t, abs(n.Y-7), 1)
}

func TestMoveIntoCorneredPixieIsBlocked(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	a.Char = FacingNorth
	n := placePixie(w, "n1", 11, 7)
	s, _ := w.Scene(0, 0)
	for _, xy := range [][2]int{{10, 6}, {10, 8}, {11, 6}, {11, 8}, {12, 6}, {12, 7}, {12, 8}} {
		s.SetTile(xy[0], xy[1], TileWall)
	}

	out := queueAndRun(t, w, "a", move(1, 0, FacingEast))
	assert.Equal(t, 10, a.X)
	assert.Equal(t, FacingEast, a.Char, "facing still turns")
	assert.Equal(t, []string{KeyPixieBlockedPath}, noticeKeys(out, "a"))
	notices := payloads[protocol.SystemNotice](out, "a", protocol.MsgSystemNotice)
	assert.Equal(t, SeverityBad, notices[0].Severity)
	assert.Equal(t, 11, n.X)
	assert.Equal(t, 7, n.Y)
}

func TestBuildWallObstructedByPixie(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	placePixie(w, "n1", 11, 7)

	out := queueAndRun(t, w, "a", wallAt(protocol.IntentBuildWall, 1, 0))
	assert.Equal(t, []string{KeyBuildObstructed}, noticeKeys(out, "a"))
	assert.Equal(t, InitialWalls, a.Walls)
}

func TestPixieManaBoost(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	a.CurrentMana = 0
	n := placePixie(w, "n1", 11, 7)

	out := w.RegenerateMana()
	assert.Equal(t, 1, a.CurrentMana, "0.5 base plus 1 from the pixie")
	require.Equal(t, []string{KeyPixieManaBoost}, noticeKeys(out, "a"))
	notices := payloads[protocol.SystemNotice](out, "a", protocol.MsgSystemNotice)
	assert.Equal(t, 1, notices[0].Placeholders["amount"])
	assert.Equal(t, SeverityGood, notices[0].Severity)

	n.X, n.Y = 19, 0
	out = w.RegenerateMana()
	assert.Equal(t, 2, a.CurrentMana)
	assert.Empty(t, noticeKeys(out, "a"), "out of range, no boost")

	n.X, n.Y = 10, 9
	a.CurrentMana = a.MaxMana
	out = w.RegenerateMana()
	assert.Empty(t, noticeKeys(out, "a"), "full mana gains nothing")
}

func TestWanderStaysOnOpenTiles(t *testing.T) {
	w := pixieWorld(3)
	r := w.Rules()
	r.PixieWanderChance = 1
	w.SetRules(r)
	a, _ := w.AddPlayer("a")
	s, _ := w.Scene(0, 0)
	start := npcPositions(w)

	for i := 0; i < 200; i++ {
		w.WanderNPCs()
		seen := make(map[[2]int]bool)
		for _, n := range w.npcs {
			tile, ok := s.TileAt(n.X, n.Y)
			require.True(t, ok)
			require.NotEqual(t, TileWall, tile)
			require.False(t, n.X == a.X && n.Y == a.Y)
			require.False(t, seen[[2]int{n.X, n.Y}])
			seen[[2]int{n.X, n.Y}] = true
		}
	}
	assert.NotEqual(t, start, npcPositions(w))
}

func TestWanderIsSeeded(t *testing.T) {
	run := func() map[NPCID][2]int {
		w := pixieWorld(11)
		for i := 0; i < 50; i++ {
			w.WanderNPCs()
		}
		return npcPositions(w)
	}
	assert.Equal(t, run(), run())

	w := pixieWorld(11)
	r := w.Rules()
	r.PixieWanderChance = 0
	w.SetRules(r)
	start := npcPositions(w)
	for i := 0; i < 50; i++ {
		w.WanderNPCs()
	}
	assert.Equal(t, start, npcPositions(w))
}

func sensoryNotices(out Outbox, to ClientID) []protocol.SystemNotice {
	var res []protocol.SystemNotice
	for _, n := range payloads[protocol.SystemNotice](out, to, protocol.MsgSystemNotice) {
		if strings.HasPrefix(n.Severity, SeveritySensory) {
			res = append(res, n)
		}
	}
	return res
}

func TestSenseVisiblePixie(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	n := placePixie(w, "n1", 12, 7)

	var got []protocol.SystemNotice
	for i := 0; i < 500; i++ {
		cues := sensoryNotices(w.sense(a), "a")
		require.LessOrEqual(t, len(cues), 1, "one cue per pixie per pass")
		got = append(got, cues...)
	}
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Contains(t, []string{KeyPixieShimmer, KeyPixieDart}, c.MessageKey)
		assert.Equal(t, SeveritySensory+SenseSight, c.Severity)
		assert.Equal(t, n.Name, c.Placeholders["npcName"])
	}
}

func TestSenseHiddenPixieByDistance(t *testing.T) {
	w := openWorld()
	r := w.Rules()
	r.ViewDistance = 0
	w.SetRules(r)
	a, _ := w.AddPlayer("a")
	n := placePixie(w, "n1", 12, 7)

	var got []protocol.SystemNotice
	for i := 0; i < 300; i++ {
		cues := sensoryNotices(w.sense(a), "a")
		require.LessOrEqual(t, len(cues), 1)
		got = append(got, cues...)
	}
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.NotEqual(t, SeveritySensory+SenseSight, c.Severity)
		assert.Equal(t, "to the east", c.Placeholders["direction"])
	}

	n.X, n.Y = 19, 0
	for i := 0; i < 300; i++ {
		require.Empty(t, w.sense(a), "beyond every cue range")
	}
}

func TestLookSensesPixies(t *testing.T) {
	w := openWorld()
	w.AddPlayer("a")
	placePixie(w, "n1", 12, 7)

	found := false
	for i := 0; i < 300 && !found; i++ {
		out := queueAndRun(t, w, "a", protocol.Intent{Type: protocol.IntentLook})
		found = len(sensoryNotices(out, "a")) > 0
	}
	assert.True(t, found)
}

func TestGeneralDirection(t *testing.T) {
	cases := []struct {
		dx, dy int
		want   string
	}{
		{0, 0, "nearby"},
		{3, 0, "to the east"},
		{-2, 1, "to the west"},
		{0, -4, "to the north"},
		{1, 5, "to the south"},
		{2, 2, "to the southeast"},
		{-1, -1, "to the northwest"},
		{3, -3, "to the northeast"},
		{-2, 2, "to the southwest"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, generalDirection(c.dx, c.dy), "dx=%d dy=%d", c.dx, c.dy)
	}
}
