package viewer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/skytour/internal/coords"
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleBar     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStatus  = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

const helpLine = "space play/pause  ←/→ prev/next  g N ⏎ jump  r reset  l loop  1/2/4 speed  [/] layers  ,/. wavelength  q quit"

// Terminal is a Recorder that renders its state to a tcell screen. Draw and
// all viewer calls must happen on the same goroutine.
type Terminal struct {
	*Recorder
	screen tcell.Screen

	title       string
	description string
	status      string
	countdown   int
	counting    bool
}

func NewTerminal(screen tcell.Screen, fov float64, pos coords.Equatorial) *Terminal {
	return &Terminal{
		Recorder: NewRecorder(fov, pos),
		screen:   screen,
	}
}

func (t *Terminal) SetCaption(title, description string) {
	t.title = title
	t.description = description
}

func (t *Terminal) SetStatus(s string) { t.status = s }

func (t *Terminal) ShowCountdown(secs int) {
	t.countdown = secs
	t.counting = true
}

func (t *Terminal) HideCountdown() { t.counting = false }

// Draw renders the current state and shows it.
func (t *Terminal) Draw() {
	s := t.screen
	s.Clear()
	w, h := s.Size()
	if w < 20 || h < 8 {
		s.Show()
		return
	}

	t.drawBox(0, 0, w, h-1, "skytour")

	y := 2
	t.drawString(2, y, truncate(t.title, w-4), styleTitle)
	y++
	for _, line := range wrap(t.description, w-4) {
		if y >= h-4 {
			break
		}
		t.drawString(2, y, line, styleDefault)
		y++
	}
	y++

	pos := t.Position()
	t.drawField(2, y, "RA ", coords.FormatRA(pos.RA))
	t.drawField(w/2, y, "Dec", coords.FormatDec(pos.Dec))
	y++
	t.drawField(2, y, "FoV", fmt.Sprintf("%.4f°", t.FoV()))
	if t.raster != "" {
		t.drawField(w/2, y, "IMG", truncate(t.raster, w/2-8))
	}
	y += 2

	barWidth := 20
	for _, l := range t.Layers() {
		if y >= h-3 {
			break
		}
		filled := int(l.Opacity*float64(barWidth) + 0.5)
		bar := strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled)
		t.drawString(2, y, bar, styleBar)
		t.drawString(4+barWidth, y, fmt.Sprintf("%3.0f%% %s", l.Opacity*100, truncate(l.ID, w-barWidth-12)), styleDefault)
		y++
	}

	status := t.status
	if t.counting {
		status = fmt.Sprintf("%s  next in %ds", status, t.countdown)
	}
	t.drawString(0, h-2, fmt.Sprintf(" %-*s", w-1, truncate(status, w-1)), styleStatus)
	t.drawString(1, h-1, truncate(helpLine, w-2), styleHelp)

	s.Show()
}

func (t *Terminal) drawField(x, y int, label, value string) {
	t.drawString(x, y, label, styleLabel)
	t.drawString(x+len(label)+1, y, value, styleDefault)
}

func (t *Terminal) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawBox draws a bordered box with optional title
func (t *Terminal) drawBox(x, y, w, h int, title string) {
	s := t.screen
	s.SetContent(x, y, '┌', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		s.SetContent(x+i, y, '─', nil, styleBorder)
	}
	s.SetContent(x+w-1, y, '┐', nil, styleBorder)

	if title != "" {
		titleX := x + (w-len(title)-2)/2
		s.SetContent(titleX, y, ' ', nil, styleBorder)
		t.drawString(titleX+1, y, title, styleTitle)
		s.SetContent(titleX+1+len(title), y, ' ', nil, styleBorder)
	}

	for row := 1; row < h-1; row++ {
		s.SetContent(x, y+row, '│', nil, styleBorder)
		s.SetContent(x+w-1, y+row, '│', nil, styleBorder)
	}

	s.SetContent(x, y+h-1, '└', nil, styleBorder)
	for i := 1; i < w-1; i++ {
		s.SetContent(x+i, y+h-1, '─', nil, styleBorder)
	}
	s.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func wrap(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		wr := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(wr) > width {
			lines = append(lines, truncate(string(cur), width))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, wr...)
	}
	if len(cur) > 0 {
		lines = append(lines, truncate(string(cur), width))
	}
	return lines
}
