package term

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/Faultbox/textensions/internal/logger"
	"github.com/Faultbox/textensions/internal/scene"
)

// LayoutGrid returns the grid matching a monospace face: one advance wide
// and one line high.
func LayoutGrid(face font.Face, rows int) Grid {
	adv, _ := face.GlyphAdvance('M')
	return Grid{
		CellWidth:  float32(adv) / 64,
		CellHeight: float32(face.Metrics().Height) / 64,
		Rows:       rows,
	}
}

// Key is a parsed key binding.
type Key struct {
	Key  tcell.Key
	Rune rune
}

// ParseKey accepts tcell key names such as "F1" or "Enter", or a single
// character.
func ParseKey(name string) (Key, error) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return Key{Key: tcell.KeyRune, Rune: r}, nil
	}
	for k, n := range tcell.KeyNames {
		if strings.EqualFold(n, name) {
			return Key{Key: k}, nil
		}
	}
	return Key{}, fmt.Errorf("unknown key %q", name)
}

func (k Key) matches(ev *tcell.EventKey) bool {
	if k.Key == tcell.KeyRune {
		return ev.Key() == tcell.KeyRune && ev.Rune() == k.Rune
	}
	return ev.Key() == k.Key
}

// Preview draws a scene on a tcell screen.
type Preview struct {
	screen    tcell.Screen
	scene     *scene.Scene
	grid      Grid
	revealKey Key
	log       *zap.Logger
}

// NewPreview draws s on an initialized screen. face must be the face the
// scene was laid out with.
func NewPreview(screen tcell.Screen, s *scene.Scene, face font.Face, revealKey Key) *Preview {
	_, rows := screen.Size()
	return &Preview{
		screen:    screen,
		scene:     s,
		grid:      LayoutGrid(face, rows),
		revealKey: revealKey,
		log:       logger.Named("term"),
	}
}

// Draw renders the current frame.
func (p *Preview) Draw() {
	cols, rows := p.screen.Size()
	p.grid.Rows = rows

	p.screen.Clear()
	offset := p.scene.Offset(float32(cols)*p.grid.CellWidth, float32(rows)*p.grid.CellHeight)
	for _, c := range Cells(p.scene.Label(), offset, p.grid) {
		if c.X < 0 || c.X >= cols || c.Y < 0 || c.Y >= rows {
			continue
		}
		style := tcell.StyleDefault.
			Foreground(tcell.NewRGBColor(int32(c.Color.R), int32(c.Color.G), int32(c.Color.B))).
			Bold(c.Bold).
			Dim(c.Dim)
		p.screen.SetContent(c.X, c.Y, c.Rune, nil, style)
	}
	p.screen.Show()
}

// HandleEvent reacts to one terminal event and reports whether to quit.
func (p *Preview) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		case p.revealKey.matches(ev):
			p.log.Debug("restarting reveal")
			p.scene.Restart()
		case ev.Key() == tcell.KeyF5:
			p.scene.Effects().LogApplied()
		}
	case *tcell.EventResize:
		p.screen.Sync()
	}
	return false
}

// Run drives the scene at one tick per interval until ctx ends or the user
// quits.
func (p *Preview) Run(ctx context.Context, interval time.Duration) error {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go p.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	p.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if p.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			p.scene.Update(now.Sub(last).Seconds())
			last = now
			p.Draw()
		}
	}
}
