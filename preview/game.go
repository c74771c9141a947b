package preview

import (
	"fmt"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/lumen"
)

// RunConfig configures the preview window.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
}

// Game adapts a graph and its preview scene to ebiten.Game. Each tick runs
// the update callback, then refreshes the graph into the scene.
type Game struct {
	Graph  *lumen.Graph
	Scene  *Scene
	Config RunConfig

	// OnUpdate runs before every refresh with the tick length in seconds.
	OnUpdate func(dt float32) error

	// Lock, if set, is held across OnUpdate and the refresh so other
	// goroutines (an inspect handler, for example) can read the graph safely.
	Lock sync.Locker

	last time.Time
}

// NewGame creates a Game for g. g must have been created with s as its scene.
func NewGame(g *lumen.Graph, s *Scene, cfg RunConfig) *Game {
	if g.Scene() != lumen.Scene(s) {
		panic("preview: graph is not bound to this scene")
	}
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	return &Game{Graph: g, Scene: s, Config: cfg}
}

// Update implements ebiten.Game.
func (gm *Game) Update() error {
	if gm.Lock != nil {
		gm.Lock.Lock()
		defer gm.Lock.Unlock()
	}
	now := time.Now()
	dt := tickSeconds(ebiten.TPS(), now.Sub(gm.last), !gm.last.IsZero())
	gm.last = now
	return gm.step(dt)
}

// tickSeconds returns the length of one tick. With a fixed TPS it is 1/tps;
// with ebiten.SyncWithFPS (or any non-positive TPS) it is the measured time
// since the previous tick, or 0 on the first tick.
func tickSeconds(tps int, elapsed time.Duration, hasLast bool) float32 {
	if tps > 0 {
		return 1 / float32(tps)
	}
	if !hasLast || elapsed < 0 {
		return 0
	}
	return float32(elapsed.Seconds())
}

func (gm *Game) step(dt float32) error {
	if gm.OnUpdate != nil {
		if err := gm.OnUpdate(dt); err != nil {
			return err
		}
	}
	gm.Graph.RefreshSceneGPUData(nil)
	return nil
}

// Draw implements ebiten.Game.
func (gm *Game) Draw(screen *ebiten.Image) {
	gm.Scene.Draw(screen)
	if gm.Config.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nNodes: %d\nEntities: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), gm.Graph.NumNodes(), len(gm.Scene.Frame())))
	}
}

// Layout implements ebiten.Game.
func (gm *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gm.Config.Width, gm.Config.Height
}

// Run opens a window and drives gm until it is closed or OnUpdate fails.
func Run(gm *Game) error {
	ebiten.SetWindowTitle(gm.Config.Title)
	ebiten.SetWindowSize(gm.Config.Width, gm.Config.Height)
	return ebiten.RunGame(gm)
}
