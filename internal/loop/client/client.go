// Package client runs the game in a terminal: it reads keys, drives a
// loop.Game and renders the field with a half-block canvas.
package client

import (
	"bufio"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/crystals/internal/draw"
	"github.com/tomz197/crystals/internal/input"
	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/loop/server"
	"github.com/tomz197/crystals/internal/object"
	"github.com/tomz197/crystals/internal/physics"
)

// pointerRate is how far a held direction key moves the pointer per second,
// in pointer units where the full range is [-1, 1].
const pointerRate = 1.6

// Banner and effect timings.
const (
	bannerDuration = 1500 * time.Millisecond
	pickupSparks   = 10
	impactSparks   = 16
	explodeSparks  = 48
)

// Client handles rendering and input for a single terminal.
type Client struct {
	hub          server.Registry
	handle       *server.Handle
	game         *loop.Game
	scene        *Scene
	state        *ClientState
	canvas       *draw.Canvas
	camera       draw.Camera
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	logger       *log.Logger
	username     string
	termSizeFunc draw.TermSizeFunc
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Logger       *log.Logger
	Rand         object.Rand // Spawn source; nil uses a seeded default
}

// NewClient creates a client registered with the given hub.
func NewClient(hub server.Registry, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	handle := hub.Register(opts.Username)
	logger = logger.With("session", handle.ID)

	scene := NewScene(uint64(time.Now().UnixNano()))
	gameOpts := []loop.Option{loop.WithLogger(logger)}
	if opts.Rand != nil {
		gameOpts = append(gameOpts, loop.WithRand(opts.Rand))
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		hub:          hub,
		handle:       handle,
		game:         loop.NewGame(scene, gameOpts...),
		scene:        scene,
		state:        NewClientState(time.Now()),
		canvas:       canvas,
		camera:       draw.NewCamera(config.ViewWidth, config.ViewHeight),
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		logger:       logger,
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
	}
}

// Run starts the client loop. Blocks until the player quits, goes idle or
// the server shuts down.
func (c *Client) Run() error {
	defer c.hub.Unregister(c.handle.ID)

	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		c.update(input.ReadInput(c.inputStream), dt, frameStart)

		if err := c.drawFrame(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	snap := c.game.Snapshot()
	c.logger.Info("Session ended", "user", c.username, "score", snap.Score, "level", snap.Level)

	draw.ClearScreen(c.writer)
	return nil
}

// update runs one frame: input, hub events, the game tick and effects.
func (c *Client) update(in input.Input, dt time.Duration, now time.Time) {
	c.processInput(in, dt, now)
	c.processServerEvents()
	c.updateScreen()

	c.handleGameEvents(c.game.Tick(dt))

	c.scene.Thrust = c.game.Session().Boosting
	c.scene.Update(dt)
	c.state.tick(dt)
	c.reportScore()
}

// processInput maps keys onto game commands and the steering pointer.
func (c *Client) processInput(in input.Input, dt time.Duration, now time.Time) {
	if in.Any() {
		c.state.lastInput = now
		c.state.isInactive = false
	} else if now.Sub(c.state.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if now.Sub(c.state.lastInput).Seconds() > config.InactivityWarnUser {
		if !c.state.isInactive && c.game.State() == loop.GameStatePlaying {
			c.game.Handle(loop.CommandTogglePause)
		}
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
		return
	}
	if c.state.shutdown {
		return
	}

	switch c.game.State() {
	case loop.GameStateMenu:
		if in.Enter {
			c.state.pointer = physics.Vec2{}
			c.game.Handle(loop.CommandStart)
		}
	case loop.GameStateGameOver:
		if in.Enter {
			c.state.pointer = physics.Vec2{}
			c.scene.Reset()
			c.game.Handle(loop.CommandRestart)
		}
	case loop.GameStatePaused:
		if in.Enter || in.Pause {
			c.game.Handle(loop.CommandTogglePause)
		}
		return
	case loop.GameStatePlaying:
		if in.Pause {
			c.game.Handle(loop.CommandTogglePause)
			return
		}
	}

	// Boost follows the key: on when pressed, off when released
	if in.Boost != c.state.boostHeld {
		c.state.boostHeld = in.Boost
		if in.Boost {
			c.game.Handle(loop.CommandBoostOn)
		} else if c.game.Session().Boosting {
			c.game.Handle(loop.CommandBoostOff)
		}
	}

	if c.game.State() != loop.GameStatePlaying {
		return
	}
	step := pointerRate * dt.Seconds()
	if in.Left {
		c.state.pointer.X -= step
	}
	if in.Right {
		c.state.pointer.X += step
	}
	if in.Up {
		c.state.pointer.Y += step
	}
	if in.Down {
		c.state.pointer.Y -= step
	}
	c.state.pointer.X = physics.Clamp(c.state.pointer.X, -1, 1)
	c.state.pointer.Y = physics.Clamp(c.state.pointer.Y, -1, 1)
	c.game.SetPointer(c.state.pointer.X, c.state.pointer.Y)
}

// processServerEvents handles events from the hub.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Hub closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				if c.game.State() == loop.GameStatePlaying {
					c.game.Handle(loop.CommandTogglePause)
				}
				c.state.shutdown = true
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// handleGameEvents turns game events into effects and banners.
func (c *Client) handleGameEvents(events []loop.Event) {
	for _, e := range events {
		switch e.Type {
		case loop.EventPickup:
			c.scene.Burst(e.Position, pickupSparks, 8, 0.4, draw.ColorCyan)
			if e.Combo > 1 {
				c.state.combo = e.Combo
			}
		case loop.EventComboHidden, loop.EventComboReset:
			c.state.combo = 0
		case loop.EventLevelUp:
			c.state.showBanner(bannerLevel, e.Level, bannerDuration)
		case loop.EventSpeedUp:
			c.state.showBanner(bannerSpeed, e.SpeedLevel, bannerDuration)
		case loop.EventBoostDepleted:
			c.state.showBanner(bannerBoostEmpty, 0, bannerDuration)
		case loop.EventImpact:
			c.scene.Burst(e.Position, impactSparks, 12, 0.5, draw.ColorRed)
		case loop.EventExplosion:
			c.scene.Burst(e.Position, explodeSparks, 20, 1.2, draw.ColorYellow)
		case loop.EventShake:
			c.scene.Shake(e.Intensity, e.Duration)
		case loop.EventGameOver:
			c.state.final = e
			c.state.combo = 0
			c.logger.Debug("Game over", "score", e.Score, "level", e.Level, "maxCombo", e.MaxCombo)
		case loop.EventStateChanged:
			if e.State == loop.GameStatePlaying {
				c.state.banner = bannerNone
			}
		}
	}
}

// reportScore publishes score changes to the hub leaderboard.
func (c *Client) reportScore() {
	sess := c.game.Session()
	if sess.Score == c.state.lastScore {
		return
	}
	c.state.lastScore = sess.Score
	c.hub.Report(c.handle.ID, sess.Score, sess.Level)
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil || termWidth <= 0 || termHeight <= 0 {
		return
	}
	c.scene.SetReady(true)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}
