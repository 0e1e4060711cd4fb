package terminal

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/time/rate"

	"github.com/wricardo/maze-puzzle-game/game/engine"
)

// DefaultTicksPerSecond is the pace of the simulation when played locally.
const DefaultTicksPerSecond = 10

// boardTop is the first screen row used by the board; row 0 is the header.
const boardTop = 1

var kindStyles = map[engine.Kind]tcell.Style{
	engine.KindPlayer:            tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	engine.KindStar:              tcell.StyleDefault.Foreground(tcell.ColorGold),
	engine.KindKey:               tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
	engine.KindWall:              tcell.StyleDefault.Foreground(tcell.ColorGray),
	engine.KindDoor:              tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	engine.KindBox:               tcell.StyleDefault.Foreground(tcell.ColorOrange),
	engine.KindGhost:             tcell.StyleDefault.Foreground(tcell.ColorPurple),
	engine.KindSquishy:           tcell.StyleDefault.Foreground(tcell.ColorRed),
	engine.KindSquishyHorizontal: tcell.StyleDefault.Foreground(tcell.ColorRed),
	engine.KindSquishyVertical:   tcell.StyleDefault.Foreground(tcell.ColorRed),
}

var (
	floorStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	textStyle    = tcell.StyleDefault
	messageStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	wonStyle     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	lostStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Game drives one engine from a terminal. Terminals report key-down only, so
// every direction key seen since the last tick counts as held for that tick
// and the most recent one is the pressed key for precise levels.
type Game struct {
	screen  tcell.Screen
	engine  *engine.GameEngine
	limiter *rate.Limiter

	held    engine.Keys
	pressed engine.Direction
	last    *engine.Snapshot
	err     error
}

// New creates a terminal game on an initialized screen.
func New(screen tcell.Screen, eng *engine.GameEngine, ticksPerSecond float64) *Game {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return &Game{
		screen:  screen,
		engine:  eng,
		limiter: rate.NewLimiter(rate.Limit(ticksPerSecond), 1),
		last:    eng.Snapshot(),
	}
}

// keyDirection maps arrow keys and WASD to a direction.
func keyDirection(ev *tcell.EventKey) engine.Direction {
	switch ev.Key() {
	case tcell.KeyLeft:
		return engine.Left
	case tcell.KeyRight:
		return engine.Right
	case tcell.KeyUp:
		return engine.Up
	case tcell.KeyDown:
		return engine.Down
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a', 'A':
			return engine.Left
		case 'd', 'D':
			return engine.Right
		case 'w', 'W':
			return engine.Up
		case 's', 'S':
			return engine.Down
		}
	}
	return engine.NoDirection
}

// HandleEvent applies one terminal event. It returns false when the player
// asked to quit or a reset failed.
func (g *Game) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if d := keyDirection(ev); d != engine.NoDirection {
			g.held = g.held.With(d)
			g.pressed = d
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'r', 'R':
			g.clearInput()
			if g.engine.Status() == engine.StatusWon {
				return g.reload("new game", g.engine.Reset())
			}
			return g.reload("restart level", g.engine.Restart())
		case 'n', 'N':
			g.clearInput()
			return g.reload("new game", g.engine.Reset())
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// reload refreshes the snapshot after a reset or restart. A failed reload
// is kept for Run to return and stops the game.
func (g *Game) reload(action string, err error) bool {
	if err != nil {
		g.err = fmt.Errorf("%s: %w", action, err)
		return false
	}
	g.last = g.engine.Snapshot()
	return true
}

func (g *Game) clearInput() {
	g.held = 0
	g.pressed = engine.NoDirection
}

// Step runs one tick with the keys gathered since the previous one.
func (g *Game) Step() *engine.TickResult {
	in := engine.Input{Held: g.held, Pressed: g.pressed}
	g.clearInput()
	result := g.engine.Tick(in)
	g.last = result.Snapshot
	return result
}

// Draw renders the last snapshot.
func (g *Game) Draw() {
	g.screen.Clear()
	s := g.last

	g.drawText(0, 0, fmt.Sprintf("Level %d/%d: %s  Tick %d  Stars %d  Monsters %d",
		s.Level+1, s.LevelCount, s.LevelName, s.Tick, s.StarsCollected, s.MonsterCount), textStyle)

	styles := make(map[rune]tcell.Style, len(kindStyles))
	for kind, style := range kindStyles {
		styles[kind.Glyph()] = style
	}
	for y, row := range engine.RenderText(s) {
		for x, glyph := range row {
			style, ok := styles[glyph]
			if !ok {
				style = floorStyle
			}
			g.screen.SetContent(x, boardTop+y, glyph, nil, style)
		}
	}

	line := boardTop + s.Height + 1
	g.drawText(0, line, s.GoalMessage, textStyle)
	line++
	if s.Message != "" {
		style := messageStyle
		switch s.Status {
		case engine.StatusWon:
			style = wonStyle
		case engine.StatusGameOver:
			style = lostStyle
		}
		g.drawText(0, line, s.Message, style)
	}
	line += 2
	g.drawText(0, line, "arrows/WASD move  r restart level  n new game  q quit", floorStyle)

	g.screen.Show()
}

func (g *Game) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		g.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Run plays until the player quits or ctx is cancelled. Input is drained
// before every tick so keys pressed between ticks are applied together. A
// level that fails to reload ends the game with that error.
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	g.Draw()
	for {
		if err := g.limiter.Wait(ctx); err != nil {
			// Cancellation ends the session; a deadline too close to wait for does too.
			return nil
		}

	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok || !g.HandleEvent(ev) {
					return g.err
				}
			default:
				break drain
			}
		}

		if !g.engine.IsOver() {
			g.Step()
		}
		g.Draw()
	}
}

// Play opens the real terminal and runs the game on it.
func Play(ctx context.Context, eng *engine.GameEngine, ticksPerSecond float64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return New(screen, eng, ticksPerSecond).Run(ctx)
}
