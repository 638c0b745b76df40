package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepOntoWaterSoaks(t *testing.T) {
	w := NewWorld(WorldConfig{Rules: DefaultRules(), SpawnShrine: true, Seed: 1})
	a, _ := w.AddPlayer("a")
	a.X = 7

	out := queueAndRun(t, w, "a", move(-1, 0, FacingWest))
	assert.Equal(t, 6, a.X)
	assert.True(t, a.IsWet)
	assert.Equal(t, []string{KeyBecameWetWater}, noticeKeys(out, "a"))
	assert.True(t, a.Private().IsWet)
	assert.True(t, a.Public().IsWet)

	out = queueAndRun(t, w, "a", move(0, 1, FacingSouth))
	assert.Equal(t, 8, a.Y)
	assert.Empty(t, out, "already wet")

	out = queueAndRun(t, w, "a", move(1, 0, FacingEast))
	assert.Empty(t, out)
	assert.True(t, a.IsWet, "leaving the water does not dry you")
}

func TestWeatherDriesAfterTicks(t *testing.T) {
	r := DefaultRules()
	r.DryAfterTicks = 3
	w := NewWorld(WorldConfig{Rules: r, SpawnShrine: true, Seed: 1})
	a, _ := w.AddPlayer("a")
	a.X = 7

	w.beginTick(1)
	queueAndRun(t, w, "a", move(-1, 0, FacingWest))
	assert.Empty(t, w.Weather(), "standing in water keeps you wet")

	w.beginTick(2)
	queueAndRun(t, w, "a", move(1, 0, FacingEast))
	assert.Empty(t, w.Weather())
	w.beginTick(3)
	assert.Empty(t, w.Weather())

	w.beginTick(4)
	out := w.Weather()
	assert.Equal(t, []string{KeyBecameDry}, noticeKeys(out, "a"))
	assert.False(t, a.IsWet)

	w.beginTick(5)
	assert.Empty(t, w.Weather())
}

func TestWeatherNeverDriesWhenDisabled(t *testing.T) {
	r := DefaultRules()
	r.DryAfterTicks = 0
	w := NewWorld(WorldConfig{Rules: r, Seed: 1})
	a, _ := w.AddPlayer("a")
	a.IsWet = true

	for tick := uint64(1); tick < 100; tick++ {
		w.beginTick(tick)
		require.Empty(t, w.Weather())
	}
	assert.True(t, a.IsWet)
}

func TestRainSoaksOutdoorsOnly(t *testing.T) {
	r := DefaultRules()
	r.Raining = true
	w := NewWorld(WorldConfig{Rules: r, Seed: 1, IndoorScenes: []SceneKey{{X: 1, Y: 0}}})
	a, _ := w.AddPlayer("a")
	b, _ := w.AddPlayer("b")
	moveTo(w, b, 1, 0)
	hall, ok := w.Scene(1, 0)
	require.True(t, ok)
	assert.True(t, hall.Indoors)

	w.beginTick(1)
	out := w.Weather()
	assert.Equal(t, []string{KeyBecameWetRain}, noticeKeys(out, "a"))
	assert.Empty(t, noticeKeys(out, "b"))
	assert.True(t, a.IsWet)
	assert.False(t, b.IsWet)

	w.beginTick(2)
	assert.Empty(t, w.Weather(), "rain notice only once")

	moveTo(w, a, 1, 0)
	w.beginTick(3)
	out = w.Weather()
	assert.Equal(t, []string{KeyBecameDry}, noticeKeys(out, "a"), "indoors dries at once")
	assert.False(t, a.IsWet)
}

func TestInitialStateRainIntensity(t *testing.T) {
	w := openWorld()
	a, _ := w.AddPlayer("a")
	assert.Zero(t, w.InitialState(a, 0.75).RainIntensity)

	r := w.Rules()
	r.Raining = true
	w.SetRules(r)
	assert.Equal(t, 0.25, w.InitialState(a, 0.75).RainIntensity)
}
