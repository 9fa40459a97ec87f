package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/vpalmerio/MoveGameDB/game"
	"github.com/vpalmerio/MoveGameDB/session"
)

const (
	screenWidth   = 1024
	screenHeight  = 768
	inputSendRate = 50 * time.Millisecond // Send direction ~20 times/sec
	maxNameLen    = 16
	cameraLerp    = 0.1
)

var (
	backgroundColor = color.RGBA{R: 0x14, G: 0x14, B: 0x1e, A: 0xff}
	borderColor     = color.RGBA{R: 0x3c, G: 0x3c, B: 0x50, A: 0xff}
	foodColor       = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	ownColor        = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	enemyColor      = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	orphanColor     = color.RGBA{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}
)

// App is the ebiten game loop. It is a pure consumer of session frames:
// Update samples input and issues commands, Draw renders the latest frame,
// and all shared state stays inside the session.
type App struct {
	sess   *session.Session
	logger *slog.Logger

	// Camera state
	cameraX float64
	cameraY float64

	// Input state
	nameInput []rune
	lastDir   game.Vector2
	haveDir   bool
	lastSend  time.Time

	// Mass at the last playing frame, shown on the death screen.
	finalMass float64
}

func NewApp(sess *session.Session, logger *slog.Logger) *App {
	return &App{
		sess:   sess,
		logger: logger.With("component", "render"),
	}
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	f := a.sess.Frame()
	switch f.Phase {
	case game.PhaseLogin:
		a.updateLogin()
	case game.PhasePlaying:
		a.finalMass = f.TotalMass
		a.updatePlaying()
		a.updateCamera(f)
	case game.PhaseDead:
		if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			a.sess.Respawn()
		}
		a.updateCamera(f)
	}
	return nil
}

func (a *App) updateLogin() {
	a.nameInput = ebiten.AppendInputChars(a.nameInput)
	if len(a.nameInput) > maxNameLen {
		a.nameInput = a.nameInput[:maxNameLen]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(a.nameInput) > 0 {
		a.nameInput = a.nameInput[:len(a.nameInput)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.sess.EnterGame(string(a.nameInput))
	}
}

func (a *App) updatePlaying() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.sess.Split()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		a.sess.Suicide()
	}

	cx, cy := ebiten.CursorPosition()
	dir, ok := game.PointerDirection(float64(cx), float64(cy),
		screenWidth/2, screenHeight/2, game.DirectionDeadZone)
	if !ok {
		// Pointer inside the dead zone: hold the last sent direction.
		return
	}
	now := time.Now()
	if a.haveDir && dir == a.lastDir {
		return
	}
	if now.Sub(a.lastSend) < inputSendRate {
		return
	}
	a.sess.SetDirection(dir)
	a.lastDir = dir
	a.haveDir = true
	a.lastSend = now
}

// updateCamera eases the view toward the mass-weighted center of the
// player's circles, or the world center when none exist.
func (a *App) updateCamera(f session.Frame) {
	target, ok := game.MassWeightedCenter(f.OwnedCircles)
	if !ok {
		half := f.WorldSize / 2
		target = game.Vector2{X: half, Y: half}
	}
	a.cameraX += (target.X - a.cameraX) * cameraLerp
	a.cameraY += (target.Y - a.cameraY) * cameraLerp
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	f := a.sess.Frame()

	switch f.Phase {
	case game.PhaseConnecting:
		msg := "Connecting..."
		if f.ErrMsg != "" {
			msg += "\n" + f.ErrMsg
		}
		ebitenutil.DebugPrint(screen, msg)
	case game.PhaseWalletPending:
		msg := "Linking wallet..."
		if f.WalletErrMsg != "" {
			msg += "\n" + f.WalletErrMsg
		}
		ebitenutil.DebugPrint(screen, msg)
	case game.PhaseLoading:
		ebitenutil.DebugPrint(screen, "Loading world...")
	case game.PhaseLogin:
		a.drawLogin(screen)
	case game.PhasePlaying, game.PhaseDead:
		a.drawWorld(screen, f)
		a.drawHUD(screen, f)
		if f.Phase == game.PhaseDead {
			a.drawDeathOverlay(screen)
		}
	}
}

func (a *App) drawLogin(screen *ebiten.Image) {
	msg := fmt.Sprintf("Choose a name and press Enter:\n> %s_", string(a.nameInput))
	ebitenutil.DebugPrintAt(screen, msg, screenWidth/2-120, screenHeight/2-16)
}

func (a *App) drawWorld(screen *ebiten.Image, f session.Frame) {
	ox := screenWidth/2 - a.cameraX
	oy := screenHeight/2 - a.cameraY

	// World border.
	vector.StrokeRect(screen, float32(ox), float32(oy),
		float32(f.WorldSize), float32(f.WorldSize), 2, borderColor, true)

	for _, fd := range f.Food {
		r := fd.Radius
		if r < 2 {
			r = 2 // keep single-mass pellets visible
		}
		vector.DrawFilledCircle(screen,
			float32(fd.Position.X+ox), float32(fd.Position.Y+oy),
			float32(r), foodColor, true)
	}

	var myPlayerID uint32
	if f.LocalPlayer != nil {
		myPlayerID = f.LocalPlayer.PlayerID
	}
	names := make(map[uint32]string, len(f.Players))
	for _, p := range f.Players {
		names[p.PlayerID] = p.Name
	}

	for _, c := range f.Circles {
		name, known := names[c.PlayerID]
		col := enemyColor
		switch {
		case c.PlayerID == myPlayerID:
			col = ownColor
		case !known:
			// Owner's player row has not replicated yet.
			col = orphanColor
		}
		sx := c.Position.X + ox
		sy := c.Position.Y + oy
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(c.Radius), col, true)
		if name != "" && c.Radius >= 10 {
			ebitenutil.DebugPrintAt(screen, name, int(sx)-len(name)*3, int(sy)-8)
		}
	}
}

func (a *App) drawHUD(screen *ebiten.Image, f session.Frame) {
	name := ""
	if f.LocalPlayer != nil {
		name = f.LocalPlayer.Name
	}
	hud := fmt.Sprintf("%s | mass %.0f | circles %d", name, f.TotalMass, len(f.OwnedCircles))
	if f.ErrMsg != "" {
		hud += " | " + f.ErrMsg
	}
	ebitenutil.DebugPrintAt(screen, hud, 8, screenHeight-24)
}

func (a *App) drawDeathOverlay(screen *ebiten.Image) {
	msg := fmt.Sprintf("You were eaten. Final mass: %.0f\nPress R to respawn", a.finalMass)
	ebitenutil.DebugPrintAt(screen, msg, screenWidth/2-110, screenHeight/2-16)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
