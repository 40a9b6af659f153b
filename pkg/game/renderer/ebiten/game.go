package ebiten

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/leonelquinteros/gotext"

	"darkconsole/pkg/engine/console"
	"darkconsole/pkg/game/commands"
)

const (
	screenWidth  = 960
	screenHeight = 600
)

// Game hosts the console overlay over a plain backdrop. The backquote key
// slides the console in and out.
type Game struct {
	overlay *Overlay
}

// NewGame wires a console session into an ebiten game.
func NewGame(con *console.Console, registry *commands.Registry) (*Game, error) {
	overlay, err := NewOverlay(con, registry)
	if err != nil {
		return nil, err
	}
	return &Game{overlay: overlay}, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyBackquote) {
		g.overlay.Toggle()
	}
	g.overlay.Update(screenHeight)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})
	if !g.overlay.Active() {
		hint := gotext.Get("Press ` to open the console")
		g.overlay.drawLine(screen, hint, paddingX, screenHeight/2, color.RGBA{120, 120, 140, 255})
	}
	g.overlay.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// Run opens the window and blocks until the window closes.
func Run(con *console.Console, registry *commands.Registry) error {
	game, err := NewGame(con, registry)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("darkconsole")
	return ebiten.RunGame(game)
}
