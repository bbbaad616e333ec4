package viewer

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/skytour/internal/coords"
)

func TestRecorderOverlays(t *testing.T) {
	r := NewRecorder(60, coords.Equatorial{})
	r.Reject["bad"] = true

	o, err := r.CreateOverlay("a")
	require.NoError(t, err)
	o.SetOpacity(1.7)
	assert.Equal(t, 1.0, o.Opacity())
	o.SetOpacity(-3)
	assert.Equal(t, 0.0, o.Opacity())

	_, err = r.CreateOverlay("bad")
	assert.ErrorIs(t, err, ErrRejected)
	assert.ErrorIs(t, r.DisplayRaster("bad"), ErrRejected)

	require.NoError(t, r.DisplayRaster("m42.jpg"))
	assert.Equal(t, "m42.jpg", r.Raster())

	assert.Equal(t, []LayerState{{ID: "a", Opacity: 0}}, r.Layers())
	assert.Equal(t, 1, r.Count(OpCreateOverlay, "a"))
	assert.Equal(t, 1, r.Count(OpCreateOverlay, "bad"))

	_, ok := r.Opacity("bad")
	assert.False(t, ok)
}

func TestRecorderCamera(t *testing.T) {
	r := NewRecorder(60, coords.Equatorial{RA: 1, Dec: 2})
	r.SetFoV(5)
	r.GotoRaDec(266.4, -29)

	assert.Equal(t, 5.0, r.FoV())
	assert.Equal(t, coords.Equatorial{RA: 266.4, Dec: -29}, r.Position())
	assert.Equal(t, 2, r.Moves())
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want Action
	}{
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), Action{Cmd: CmdTogglePlay}},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Action{Cmd: CmdPrev}},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), Action{Cmd: CmdNext}},
		{tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), Action{Cmd: CmdReset}},
		{tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), Action{Cmd: CmdToggleLoop}},
		{tcell.NewEventKey(tcell.KeyRune, '4', tcell.ModNone), Action{Cmd: CmdSpeed, Speed: 4}},
		{tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone), Action{Cmd: CmdSliderDown}},
		{tcell.NewEventKey(tcell.KeyRune, ']', tcell.ModNone), Action{Cmd: CmdSliderUp}},
		{tcell.NewEventKey(tcell.KeyRune, ',', tcell.ModNone), Action{Cmd: CmdWavelengthDown}},
		{tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone), Action{Cmd: CmdWavelengthUp}},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), Action{Cmd: CmdJump, Index: 0}},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), Action{Cmd: CmdQuit}},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), Action{}},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), Action{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapKey(tt.ev), "key=%v rune=%q", tt.ev.Key(), tt.ev.Rune())
	}
}

func TestKeyMapJumpPrompt(t *testing.T) {
	var k KeyMap
	press := func(r rune) Action { return k.Map(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)) }
	key := func(key tcell.Key) Action { return k.Map(tcell.NewEventKey(key, 0, tcell.ModNone)) }

	assert.Equal(t, Action{}, press('g'))
	assert.Equal(t, Action{}, press('1'))
	assert.Equal(t, Action{}, press('2'))
	digits, open := k.Prompt()
	assert.True(t, open)
	assert.Equal(t, "12", digits)

	assert.Equal(t, Action{}, key(tcell.KeyBackspace2))
	assert.Equal(t, Action{Cmd: CmdJump, Index: 0}, key(tcell.KeyEnter))
	_, open = k.Prompt()
	assert.False(t, open)

	// digits outside the prompt keep their speed bindings
	assert.Equal(t, Action{Cmd: CmdSpeed, Speed: 2}, press('2'))

	// Esc cancels the prompt instead of quitting
	press('g')
	press('3')
	assert.Equal(t, Action{}, key(tcell.KeyEscape))
	assert.Equal(t, Action{Cmd: CmdQuit}, key(tcell.KeyEscape))

	// 0 is not a waypoint number
	press('g')
	press('0')
	assert.Equal(t, Action{}, key(tcell.KeyEnter))

	// any other key closes the prompt and is decoded normally
	press('g')
	assert.Equal(t, Action{Cmd: CmdNext}, key(tcell.KeyRight))
	_, open = k.Prompt()
	assert.False(t, open)
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func TestTerminalDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(100, 24)

	term := NewTerminal(screen, 2, coords.Equatorial{RA: 266.4167, Dec: -29.0078})
	o, err := term.CreateOverlay("CDS/P/2MASS/color")
	require.NoError(t, err)
	o.SetOpacity(0.5)

	term.SetCaption("Galactic Center", "The heart of the Milky Way.")
	term.SetStatus("1/3 playing x1")
	term.ShowCountdown(7)
	term.Draw()

	text := screenText(screen)
	assert.Contains(t, text, "skytour")
	assert.Contains(t, text, "Galactic Center")
	assert.Contains(t, text, "The heart of the Milky Way.")
	assert.Contains(t, text, "17h 45m 40.0s")
	assert.Contains(t, text, "FoV 2.0000°")
	assert.Contains(t, text, " 50% CDS/P/2MASS/color")
	assert.Contains(t, text, "next in 7s")

	term.HideCountdown()
	term.Draw()
	assert.NotContains(t, screenText(screen), "next in")
}

func TestTerminalPollStopsOnQuit(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	term := NewTerminal(screen, 2, coords.Equatorial{})
	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'g', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, '3', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	var got []Action
	term.Poll(func(a Action) { got = append(got, a) })
	assert.Equal(t, []Action{{Cmd: CmdNext}, {Cmd: CmdJump, Index: 2}, {Cmd: CmdQuit}}, got)
}

func TestWrapAndTruncate(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
	assert.Equal(t, "abc", truncate("abc", 4))
}
