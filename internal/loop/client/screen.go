package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/ballcatch/internal/loop"
	"github.com/tomz197/ballcatch/internal/loop/config"
	"github.com/tomz197/ballcatch/internal/loop/server"
)

// Player-facing messages.
const (
	safetyWarning = "The game is about to start. Please ensure you have sufficient space around you, " +
		"remain mindful of your surroundings, and avoid movements that exceed your comfort or physical abilities."
	cameraAlert = "Unable to access the camera. Please ensure camera permissions are granted and try again."
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	// The session draws the playfield while a run is on screen; a paused
	// run keeps its last frame visible under the pause panel.
	if c.state.GameState != GameStatePlaying && c.state.GameState != GameStatePaused {
		c.canvas.Clear()
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(c.lobby.GetSnapshot())

	return c.chunkWriter.Flush()
}

// drawUI draws the overlay for the current screen.
func (c *Client) drawUI(snapshot *server.Snapshot) {
	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen()
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen()
		return
	}

	switch c.state.GameState {
	case GameStateSettings:
		c.drawSettingsScreen()
	case GameStatePlaying:
		c.drawPlayingHUD(snapshot)
	case GameStatePaused:
		c.drawPlayingHUD(snapshot)
		c.drawPausedScreen()
	case GameStateCameraAlert:
		c.drawCameraAlertScreen()
	case GameStateResult:
		c.drawResultScreen()
	}
}

// drawText writes s at (col, row) and marks the cells so the canvas
// repaints them next frame.
func (c *Client) drawText(col, row int, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() || col < 1 {
		return
	}
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(s))
}

// drawPanel renders lines inside a bordered panel centred on the canvas.
func (c *Client) drawPanel(lines ...string) {
	width := panelWidth(c.canvas.TerminalWidth())
	block := c.styles.panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))

	w, h := lipgloss.Width(block), lipgloss.Height(block)
	col := max(1, (c.canvas.TerminalWidth()-w)/2+1)
	row := max(1, (c.canvas.TerminalHeight()-h)/2+1)

	c.chunkWriter.WriteBlock(col, row, block)
	for i := 0; i < h; i++ {
		c.canvas.MarkTextDirty(col, row+i, w)
	}
}

// drawSettingsScreen draws the safety warning, difficulty choice and limits.
func (c *Client) drawSettingsScreen() {
	st := c.styles
	b := c.bounds

	var levels []string
	for _, d := range config.Difficulties {
		label := strings.ToUpper(d.String()[:1]) + d.String()[1:]
		if d == c.state.Settings.Difficulty {
			levels = append(levels, st.selected.Render(label))
		} else {
			levels = append(levels, st.option.Render(label))
		}
	}
	difficulty := lipgloss.JoinHorizontal(lipgloss.Center,
		append([]string{st.text.Render("Difficulty (E/N/H): ")}, levels...)...)

	timeField := fmt.Sprintf("Time limit (%d-%d s): %s",
		b.TimeLimit.Min, b.TimeLimit.Max, c.renderField(fieldTimeLimit))
	ballsField := fmt.Sprintf("Balls limit (%d-%d): %s",
		b.BallsLimit.Min, b.BallsLimit.Max, c.renderField(fieldBallsLimit))

	lines := []string{
		st.title.Render("CATCH THE BALLS"),
		"",
		st.warning.Render(safetyWarning),
		"",
		difficulty,
		"",
		timeField,
		ballsField,
		"",
	}
	if c.pointer != nil {
		lines = append(lines, st.muted.Render("No camera detector: move the hand with arrows or WASD"))
	}
	lines = append(lines, st.muted.Render("TAB switch field | SPACE start | Q quit"))

	c.drawPanel(lines...)
}

// renderField shows a numeric field, with a cursor when it has focus.
func (c *Client) renderField(f settingsField) string {
	value := fmt.Sprintf("%-3s", c.state.fields[f])
	if f == c.state.focus {
		return c.styles.focused.Render(strings.TrimRight(value, " ") + "_")
	}
	return c.styles.text.Render(value)
}

// hudLine formats the status row. Fields are fixed width so shrinking
// values don't leave residual characters on screen.
func hudLine(st loop.Status) string {
	return fmt.Sprintf("Score: %-5d  Time: %7.2fs  Hits: %3d/%-3d  %-6s",
		st.Score, st.Elapsed.Seconds(), st.Hits, st.Settings.BallsLimit, st.Settings.Difficulty)
}

// drawPlayingHUD draws score, time and hits on the top row and the player
// count at the bottom.
func (c *Client) drawPlayingHUD(snapshot *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	c.drawText(2, 1, c.styles.hud.Render(hudLine(c.session.Status())))

	if c.state.noticeTimer > 0 {
		for i, n := range c.state.Notices {
			msg := fmt.Sprintf("%s: %s", n.Field, n)
			c.drawText(2, 2+i, c.styles.notice.Render(msg))
		}
	}

	players := fmt.Sprintf("Players: %-4d", snapshot.Players)
	c.drawText(termWidth-len(players)-1, termHeight, players)

	hint := "P pause | X stop | Q quit"
	c.drawText(2, termHeight, c.styles.muted.Render(hint))
}

// drawPausedScreen draws the pause panel over the frozen playfield.
func (c *Client) drawPausedScreen() {
	c.drawPanel(
		c.styles.title.Render("PAUSED"),
		"",
		"Press P or SPACE to resume",
		"Press X to stop",
	)
}

// drawCameraAlertScreen tells the player the camera could not be opened.
func (c *Client) drawCameraAlertScreen() {
	lines := []string{
		c.styles.alert.Render(cameraAlert),
	}
	if c.state.CameraErr != nil {
		lines = append(lines, "", c.styles.muted.Render(c.state.CameraErr.Error()))
	}
	lines = append(lines, "", "Press SPACE to return to settings")
	c.drawPanel(lines...)
}

// drawResultScreen shows the summary of the finished run.
func (c *Client) drawResultScreen() {
	res := c.state.Result
	c.drawPanel(
		c.styles.title.Render("Game Over!"),
		"",
		fmt.Sprintf("Final Score: %d", res.Score),
		fmt.Sprintf("Total Time Played: %.2f seconds", res.Elapsed.Seconds()),
		fmt.Sprintf("Number of Balls Hit: %d", res.Hits),
		c.styles.muted.Render("Ended: "+res.Reason),
		"",
		">>  Press SPACE to play again, Q to quit  <<",
	)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen() {
	c.drawPanel(
		c.styles.alert.Render("INACTIVITY WARNING"),
		"",
		fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.",
			int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds())),
		"",
		"Press any key to continue",
	)
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen() {
	remaining := int(c.state.shutdownTimer) + 1
	c.drawPanel(
		c.styles.alert.Render("SERVER SHUTTING DOWN"),
		"",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %d seconds...", remaining),
		c.styles.muted.Render("Press Q to disconnect now"),
	)
}
