package viewer

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
)

// Command is a user action decoded from a key press.
type Command int

const (
	CmdNone Command = iota
	CmdTogglePlay
	CmdPrev
	CmdNext
	CmdReset
	CmdToggleLoop
	CmdSpeed
	CmdSliderDown
	CmdSliderUp
	CmdWavelengthDown
	CmdWavelengthUp
	CmdJump
	CmdQuit
)

// Action is a decoded key press. Speed is set for CmdSpeed only, Index
// (zero-based) for CmdJump only.
type Action struct {
	Cmd   Command
	Speed float64
	Index int
}

// MapKey decodes the terminal viewer's key bindings.
func MapKey(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyLeft:
		return Action{Cmd: CmdPrev}
	case tcell.KeyHome:
		return Action{Cmd: CmdJump, Index: 0}
	case tcell.KeyRight:
		return Action{Cmd: CmdNext}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Action{Cmd: CmdQuit}
	case tcell.KeyRune:
	default:
		return Action{}
	}

	switch ev.Rune() {
	case ' ':
		return Action{Cmd: CmdTogglePlay}
	case 'r', 'R':
		return Action{Cmd: CmdReset}
	case 'l', 'L':
		return Action{Cmd: CmdToggleLoop}
	case '1':
		return Action{Cmd: CmdSpeed, Speed: 1}
	case '2':
		return Action{Cmd: CmdSpeed, Speed: 2}
	case '4':
		return Action{Cmd: CmdSpeed, Speed: 4}
	case '[':
		return Action{Cmd: CmdSliderDown}
	case ']':
		return Action{Cmd: CmdSliderUp}
	case ',':
		return Action{Cmd: CmdWavelengthDown}
	case '.':
		return Action{Cmd: CmdWavelengthUp}
	case 'q', 'Q':
		return Action{Cmd: CmdQuit}
	}
	return Action{}
}

// KeyMap decodes keys like MapKey and adds the jump prompt: 'g', the
// one-based waypoint number and Enter jump there. Esc cancels the prompt.
type KeyMap struct {
	prompt bool
	digits string
}

// Prompt reports whether a jump number is being typed and what was typed.
func (k *KeyMap) Prompt() (string, bool) { return k.digits, k.prompt }

func (k *KeyMap) Map(ev *tcell.EventKey) Action {
	if k.prompt {
		switch ev.Key() {
		case tcell.KeyEnter:
			n, err := strconv.Atoi(k.digits)
			k.reset()
			if err != nil || n < 1 {
				return Action{}
			}
			return Action{Cmd: CmdJump, Index: n - 1}
		case tcell.KeyEscape:
			k.reset()
			return Action{}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if k.digits != "" {
				k.digits = k.digits[:len(k.digits)-1]
			}
			return Action{}
		case tcell.KeyRune:
			if r := ev.Rune(); r >= '0' && r <= '9' {
				k.digits += string(r)
				return Action{}
			}
		}
		k.reset()
	}

	if ev.Key() == tcell.KeyRune && (ev.Rune() == 'g' || ev.Rune() == 'G') {
		k.prompt = true
		return Action{}
	}
	return MapKey(ev)
}

func (k *KeyMap) reset() {
	k.prompt = false
	k.digits = ""
}

// Poll reads screen events until the screen is finalized or the user quits.
// Every decoded action is passed to handle; resize events resync the screen.
// Poll runs on its own goroutine, so handle must hand work over to the loop.
func (t *Terminal) Poll(handle func(Action)) {
	var keys KeyMap
	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			a := keys.Map(ev)
			if a.Cmd == CmdNone {
				continue
			}
			handle(a)
			if a.Cmd == CmdQuit {
				return
			}
		}
	}
}
