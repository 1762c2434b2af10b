// Package client runs one player's terminal front end: it reads keys,
// drives a game session on its own frame queue and draws the playfield
// with lipgloss panels on top.
package client

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"k8s.io/utils/clock"

	"github.com/tomz197/ballcatch/internal/capture"
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/draw"
	"github.com/tomz197/ballcatch/internal/input"
	"github.com/tomz197/ballcatch/internal/logging"
	"github.com/tomz197/ballcatch/internal/loop"
	"github.com/tomz197/ballcatch/internal/loop/config"
	"github.com/tomz197/ballcatch/internal/loop/server"
)

// Client handles rendering and input for a single connection.
type Client struct {
	lobby        server.Lobby
	handle       *server.ClientHandle
	state        *ClientState
	session      *loop.Session
	queue        *loop.FrameQueue
	pointer      *detect.Pointer // Keyboard hand; nil with a camera detector
	bounds       config.Bounds
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	styles       styles
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string

	Camera    capture.Camera  // Defaults to capture.Virtual
	Detector  detect.Detector // Defaults to a keyboard-driven pointer
	Reference detect.Reference

	Settings *config.Settings // Initial settings screen values
	Bounds   *config.Bounds   // Accepted limit ranges

	// ColorProfile selects how panels are coloured. The zero value is
	// TrueColor.
	ColorProfile termenv.Profile

	Logger *log.Logger
	Clock  clock.WithTicker
}

// NewClient creates a new client registered with the given lobby.
func NewClient(lobby server.Lobby, r io.ByteReader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	bounds := config.DefaultBounds()
	if opts.Bounds != nil {
		bounds = *opts.Bounds
	}
	defaults := config.DefaultSettings()
	if opts.Settings != nil {
		defaults = *opts.Settings
	}
	camera := opts.Camera
	if camera == nil {
		camera = capture.Virtual{}
	}

	detector := opts.Detector
	if detector == nil {
		detector = detect.NewPointer(config.PlayfieldWidth, config.PlayfieldHeight)
	}
	pointer, _ := detector.(*detect.Pointer)

	handle := lobby.RegisterClient(opts.Username)
	logger = logger.With("user", handle.Username, "client", handle.ID)

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.PlayfieldWidth, config.PlayfieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	queue := loop.NewFrameQueue()
	session := loop.NewSession(loop.Options{
		Camera:    camera,
		Detector:  detector,
		Surface:   canvas,
		Scheduler: queue,
		Clock:     opts.Clock,
		Logger:    logger,
		Reference: opts.Reference,
		Bounds:    &bounds,
	})

	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(opts.ColorProfile))
	renderer.SetHasDarkBackground(true)

	return &Client{
		lobby:        lobby,
		handle:       handle,
		state:        NewClientState(defaults),
		session:      session,
		queue:        queue,
		pointer:      pointer,
		bounds:       bounds,
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		styles:       newStyles(renderer),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		logger:       logger,
	}
}

// ProfileFromEnv picks a colour profile from TERM and COLORTERM values,
// for sessions whose environment is not the process environment.
func ProfileFromEnv(termName, colorTerm string) termenv.Profile {
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case colorTerm == "truecolor" || colorTerm == "24bit":
		return termenv.TrueColor
	case strings.Contains(termName, "256color"):
		return termenv.ANSI256
	case termName == "" || termName == "dumb":
		return termenv.Ascii
	default:
		return termenv.ANSI
	}
}

// Run drives the connection frame by frame until the player quits, the
// input ends or the lobby goes away.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	defer func() {
		// Releases the camera if the player left mid-game.
		c.session.Stop()
		c.lobby.UnregisterClient(c.handle.ID)
	}()

	prev := time.Now()
	for c.state.Running {
		start := time.Now()
		c.state.delta, prev = start.Sub(prev), start

		if err := c.frame(); err != nil {
			return err
		}
		if rest := config.ClientTargetFrameTime - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// frame reads input, advances the current screen and draws it.
func (c *Client) frame() error {
	c.processInput()
	c.processServerEvents()
	c.updateScreen()
	c.update()
	return c.drawFrame()
}

// update advances the current screen by one frame.
func (c *Client) update() {
	switch c.state.GameState {
	case GameStateSettings:
		c.updateSettingsState()
	case GameStatePlaying:
		c.updatePlayingState()
	case GameStatePaused:
		c.updatePausedState()
	case GameStateCameraAlert:
		c.updateCameraAlertState()
	case GameStateResult:
		c.updateResultState()
	case GameStateShutdown:
		c.updateShutdownState()
	}
}

// processInput reads this frame's keys and tracks inactivity. A running
// game counts as activity since the player moves a hand, not keys.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)
	in := c.state.Input

	active := in.Any() || in.Left || in.Right || in.Up || in.Down ||
		c.state.GameState == GameStatePlaying
	if active {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.logger.Info("disconnecting inactive player")
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
	}
}

// processServerEvents drains lobby events without blocking.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.session.Stop()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen follows terminal resizes. Any change of the render area
// wipes the terminal so nothing is left outside the new canvas.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	w, h, col, row := clampTermSize(termWidth, termHeight)

	cv := c.canvas
	if changed := w != cv.TerminalWidth() || h != cv.TerminalHeight() ||
		col != cv.OffsetCol() || row != cv.OffsetRow(); changed {
		draw.ClearScreen(c.writer)
		cv.ForceRedraw()
	}

	cv.Resize(w, h)
	cv.SetOffset(col, row)
	c.chunkWriter.SetOffset(col, row)
}

// clampTermSize limits the render area to MaxTermWidth x MaxTermHeight and
// centres it in the terminal.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateSettingsState edits the settings and starts a session.
func (c *Client) updateSettingsState() {
	in := c.state.Input
	if in.Difficulty != 0 {
		c.state.selectDifficulty(in.Difficulty)
	}
	if in.Tab {
		c.state.nextField()
	}
	if in.Backspace {
		c.state.backspace()
	}
	if len(in.Digits) > 0 {
		c.state.typeDigits(in.Digits)
	}
	if in.Start {
		c.startSession()
	}
}

// startSession validates the typed limits and starts a run. Replaced
// limits are shown in the HUD; a camera failure shows the camera alert.
func (c *Client) startSession() {
	settings, notices := c.state.parseSettings(c.bounds)

	if c.pointer != nil {
		c.pointer.SetPosition(config.PlayfieldWidth/2, config.PlayfieldHeight/2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.CameraOpenTimeout)
	defer cancel()

	more, err := c.session.Start(ctx, settings)
	if err != nil {
		c.logger.Warn("could not start session", "err", err)
		c.state.CameraErr = err
		c.state.GameState = GameStateCameraAlert
		return
	}

	c.state.Notices = append(notices, more...)
	c.state.noticeTimer = 0
	if len(c.state.Notices) > 0 {
		c.state.noticeTimer = config.NoticeDisplaySeconds
	}
	c.state.CameraErr = nil
	c.state.GameState = GameStatePlaying
}

// updatePlayingState moves the keyboard hand, handles pause and stop keys
// and runs the session's pending frame.
func (c *Client) updatePlayingState() {
	in := c.state.Input
	dt := c.state.delta.Seconds()

	if c.pointer != nil {
		var dx, dy float64
		if in.Left {
			dx -= config.PointerSpeed * dt
		}
		if in.Right {
			dx += config.PointerSpeed * dt
		}
		if in.Up {
			dy -= config.PointerSpeed * dt
		}
		if in.Down {
			dy += config.PointerSpeed * dt
		}
		if dx != 0 || dy != 0 {
			c.pointer.Move(dx, dy)
		}
	}

	if c.state.noticeTimer > 0 {
		c.state.noticeTimer = max(0, c.state.noticeTimer-dt)
	}

	switch {
	case in.Pause:
		c.session.Pause()
		c.state.GameState = GameStatePaused
		return
	case in.Stop:
		c.session.Stop()
	}

	c.queue.RunPending()
	c.checkSessionEnded()
}

// updatePausedState resumes or stops a paused session.
func (c *Client) updatePausedState() {
	in := c.state.Input
	switch {
	case in.Pause || in.Start:
		c.session.Resume()
		c.state.GameState = GameStatePlaying
	case in.Stop:
		c.session.Stop()
		c.checkSessionEnded()
	}
}

// checkSessionEnded switches to the result screen once the run is over.
func (c *Client) checkSessionEnded() {
	if res, ok := c.session.Result(); ok {
		c.state.Result = res
		c.state.GameState = GameStateResult
	}
}

// updateCameraAlertState returns to the settings screen.
func (c *Client) updateCameraAlertState() {
	if c.state.Input.Start || c.state.Input.Escape {
		c.state.GameState = GameStateSettings
	}
}

// updateResultState goes back to the settings screen for another round.
func (c *Client) updateResultState() {
	if c.state.Input.Start {
		c.state.Notices = nil
		c.state.GameState = GameStateSettings
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
