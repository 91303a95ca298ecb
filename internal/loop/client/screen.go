package client

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomz197/crystals/internal/draw"
	"github.com/tomz197/crystals/internal/loop"
	"github.com/tomz197/crystals/internal/loop/config"
	"github.com/tomz197/crystals/internal/loop/server"
)

const boostBarWidth = 20

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state, inactivity or shutdown transitions, do a full terminal
	// clear so UI elements from the previous screen don't persist.
	gameState := c.game.State()
	if gameState != c.state.prevGameState ||
		c.state.isInactive != c.state.wasInactive ||
		c.state.shutdown != c.state.wasShutdown {
		c.chunkWriter.Clear()
		c.canvas.ForceRedraw()
		c.state.prevGameState = gameState
		c.state.wasInactive = c.state.isInactive
		c.state.wasShutdown = c.state.shutdown
	}

	c.canvas.Clear()
	if gameState != loop.GameStateLoading && gameState != loop.GameStateMenu {
		c.scene.Draw(c.canvas, c.camera)
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(gameState, c.hub.Snapshot())

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current screen.
func (c *Client) drawUI(gameState loop.GameState, hub *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.shutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch gameState {
	case loop.GameStateLoading:
		c.writeCentered(centerX, centerY, "Loading...")
	case loop.GameStateMenu:
		c.drawStartScreen(centerX, centerY, hub)
	case loop.GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight, hub)
	case loop.GameStatePaused:
		c.drawPlayingHUD(termWidth, termHeight, hub)
		c.drawPauseScreen(centerX, centerY)
	case loop.GameStateGameOver:
		c.drawGameOverScreen(centerX, centerY, hub)
	}
}

func (c *Client) writeCentered(centerX, row int, s string) {
	c.chunkWriter.WriteAt(centerX-len(s)/2, row, s)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.state.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, msg)
	c.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int, hub *server.Snapshot) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`   ___ _____   _____ _____ _   _    ___  `,
		`  / __| _ \ \ / / __|_   _/_\ | |  / __| `,
		` | (__|   /\ V /\__ \ | |/ _ \| |__\__ \ `,
		`  \___|_|_\ |_| |___/ |_/_/ \_\____|___/ `,
		`                                         `,
	}

	// Find max width for centering
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	cw := c.chunkWriter
	titleStartY := centerY - 9
	for i, line := range titleArt {
		cw.Text(centerX-titleWidth/2, titleStartY+i, draw.Style{Fg: draw.ColorCyan}, line)
	}

	c.writeCentered(centerX, titleStartY+len(titleArt)+1, "~ Fly through the field, catch crystals, dodge rocks ~")

	controlsY := titleStartY + len(titleArt) + 3
	c.writeCentered(centerX, controlsY, "Controls")
	controlLines := []string{
		"W A S D / Arrows . . Steer",
		"SPACE (hold)  . . .  Boost",
		"P / ESC . . . . . .  Pause",
		"Q . . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.writeCentered(centerX, controlsY+1+i, line)
	}

	// Blinking start prompt
	promptY := controlsY + len(controlLines) + 2
	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, promptY, ">>  Press ENTER to Start  <<")
	} else {
		c.writeCentered(centerX, promptY, strings.Repeat(" ", 28))
	}

	c.drawTopScores(centerX, promptY+2, hub)
}

// drawTopScores lists the best live scores across connected sessions.
func (c *Client) drawTopScores(centerX, row int, hub *server.Snapshot) {
	if hub == nil || len(hub.TopScores) == 0 {
		return
	}
	c.writeCentered(centerX, row, fmt.Sprintf("Top pilots online (%d playing)", hub.Players))
	for i, entry := range hub.TopScores {
		line := fmt.Sprintf("%d. %-12.12s %8d  L%-2d", i+1, entry.Username, entry.Score, entry.Level)
		c.writeCentered(centerX, row+1+i, line)
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, hub *server.Snapshot) {
	cw := c.chunkWriter
	snap := c.game.Snapshot()

	cw.WriteAt(2, 1, fmt.Sprintf("Score: %-8d", snap.Score))
	cw.WriteAt(2, 2, fmt.Sprintf("Level: %-3d", snap.Level))

	shield := ""
	var livesStyle draw.Style
	if snap.Invulnerable {
		shield = fmt.Sprintf("%.1fs", snap.InvulnerableLeft.Seconds())
		livesStyle.Fg = draw.ColorRed
	}
	lives := fmt.Sprintf("Lives: %-10s%5s", strings.Repeat("♦ ", max(snap.Lives, 0)), shield)
	cw.Text(termWidth-utf8.RuneCountInString(lives)-1, 1, livesStyle, lives)

	speed := fmt.Sprintf("Speed: %-2d x%-5.2f", snap.SpeedLevel, snap.Speed/config.BaseSpeedFloor)
	cw.WriteAt(termWidth-len(speed)-1, 2, speed)

	// Boost gauge (bottom left)
	var bar strings.Builder
	fill := snap.BoostEnergy / config.MaxBoostEnergy * boostBarWidth
	for i := range boostBarWidth {
		bar.WriteRune(draw.ShadeLevel(fill - float64(i)))
	}
	boostStyle := draw.Style{Fg: draw.ColorCyan}
	if snap.Boosting {
		boostStyle.Fg = draw.ColorYellow
	}
	cw.WriteAt(2, termHeight, "Boost [")
	cw.Text(9, termHeight, boostStyle, bar.String())
	cw.WriteAt(9+boostBarWidth, termHeight, "]")

	if hub != nil {
		players := fmt.Sprintf("Players: %-4d", hub.Players)
		cw.WriteAt(termWidth-len(players)-1, termHeight, players)
	}

	centerX := termWidth / 2
	if c.state.combo > 1 {
		text := fmt.Sprintf(" COMBO x%d ", c.state.combo)
		cw.Text(centerX-len(text)/2, 3, draw.Style{Fg: draw.ColorMagenta, Bold: true}, text)
		c.canvas.MarkTextDirty(centerX-len(text)/2, 3, len(text))
	}

	if text := c.bannerText(); text != "" {
		cw.Text(centerX-len(text)/2, 5, draw.Style{Fg: draw.ColorYellow, Bold: true}, text)
		c.canvas.MarkTextDirty(centerX-len(text)/2, 5, len(text))
	}
}

func (c *Client) bannerText() string {
	switch c.state.banner {
	case bannerLevel:
		return fmt.Sprintf(" LEVEL %d ", c.state.bannerValue)
	case bannerSpeed:
		return " SPEED UP "
	case bannerBoostEmpty:
		return " BOOST EMPTY "
	}
	return ""
}

// drawPauseScreen draws the pause overlay.
func (c *Client) drawPauseScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-1, "PAUSED")
	c.writeCentered(centerX, centerY+1, "Press P or ENTER to resume")
	c.canvas.MarkTextDirty(1, centerY-1, c.canvas.TerminalWidth())
	c.canvas.MarkTextDirty(1, centerY+1, c.canvas.TerminalWidth())
}

// drawGameOverScreen draws the final summary and restart prompt.
func (c *Client) drawGameOverScreen(centerX, centerY int, hub *server.Snapshot) {
	titleArt := []string{
		`   ___   _   __  __ ___    _____   _____ ___  `,
		`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
		` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
		`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
		`                                              `,
	}

	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	cw := c.chunkWriter
	titleStartY := centerY - 9
	for i, line := range titleArt {
		cw.Text(centerX-titleWidth/2, titleStartY+i, draw.Style{Fg: draw.ColorRed}, line)
	}

	final := c.state.final
	row := titleStartY + len(titleArt) + 1
	c.writeCentered(centerX, row, fmt.Sprintf("Score: %d", final.Score))
	c.writeCentered(centerX, row+1, fmt.Sprintf("Level reached: %d", final.Level))
	c.writeCentered(centerX, row+2, fmt.Sprintf("Best combo: x%d", final.MaxCombo))

	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, row+4, ">>  Press ENTER to Restart  <<")
	} else {
		c.writeCentered(centerX, row+4, strings.Repeat(" ", 30))
	}

	c.drawTopScores(centerX, row+6, hub)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	c.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, "Press Q to disconnect now")
}
