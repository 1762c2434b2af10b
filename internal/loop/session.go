// Package loop runs a ball-catching game session: balls fall, a detected
// hand catches them and the session ends on a limit or a manual stop.
package loop

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"k8s.io/utils/clock"

	"github.com/tomz197/ballcatch/internal/capture"
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/draw"
	"github.com/tomz197/ballcatch/internal/logging"
	"github.com/tomz197/ballcatch/internal/loop/config"
	"github.com/tomz197/ballcatch/internal/object"
)

// State is the session lifecycle phase.
type State int32

const (
	StateIdle    State = iota // Not started yet
	StateRunning              // Frames and spawning active
	StatePaused               // Frames and spawning suspended
	StateEnded                // Finished; see Result
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ErrAlreadyRunning is returned by Start while a run is in progress.
var ErrAlreadyRunning = errors.New("session already running")

// Hit burst appearance
const (
	burstParticles = 10
	burstSpeed     = 120.0 // Pixels per second
	burstLifetime  = 0.4   // Seconds
	markerSize     = 12.0
)

// Options wires a Session to its collaborators. Camera, Detector, Surface
// and Scheduler are required; the rest have defaults.
type Options struct {
	Camera    capture.Camera
	Detector  detect.Detector
	Surface   draw.Surface
	Scheduler Scheduler

	Clock     clock.WithTicker // Defaults to the real clock
	Rand      *rand.Rand       // Defaults to a time-seeded source
	Logger    *log.Logger      // Defaults to a discarding logger
	Reference detect.Reference
	Playfield object.Playfield // Defaults to the config playfield size
	Bounds    *config.Bounds   // Defaults to config.DefaultBounds
}

// Status is a point-in-time view of a session for display.
type Status struct {
	State    State
	Settings config.Settings
	Score    int
	Hits     int
	Elapsed  time.Duration
	Balls    int
	Reason   string // Set once ended
}

// Result summarizes a finished run.
type Result struct {
	Settings config.Settings
	Score    int
	Hits     int
	Elapsed  time.Duration
	Reason   string
}

// detection is one finished detection request, tagged with the run and
// the stretch between pauses that issued it.
type detection struct {
	generation uint64
	epoch      uint64
	hands      []detect.Hand
	err        error
}

// Session is one player's game. It is safe for concurrent use: frames run
// on the Scheduler, balls spawn on a clock ticker and detection runs on its
// own goroutine.
type Session struct {
	camera    capture.Camera
	detector  detect.Detector
	surface   draw.Surface
	scheduler Scheduler
	clock     clock.WithTicker
	rng       *rand.Rand
	logger    *log.Logger
	reference detect.Reference
	playfield object.Playfield
	bounds    config.Bounds

	// dispatch starts a detection request; tests make it synchronous.
	dispatch func(fn func())

	mu        sync.Mutex
	state     State
	settings  config.Settings
	score     int
	hits      int
	balls     []*object.Ball
	particles []*object.Particle
	marker    *object.HandMarker
	spawner   *object.BallSpawner
	reason    string
	result    Result

	// Elapsed time counts from the first hit and excludes paused time.
	firstHit    bool
	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	generation  uint64
	epoch       uint64 // bumped on every Resume
	stream      capture.Stream
	runCtx      context.Context
	cancelRun   context.CancelFunc
	cancelFrame func()
	done        chan struct{}

	detecting atomic.Bool
	latest    atomic.Pointer[detection]
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	s := &Session{
		camera:    opts.Camera,
		detector:  opts.Detector,
		surface:   opts.Surface,
		scheduler: opts.Scheduler,
		clock:     opts.Clock,
		rng:       opts.Rand,
		logger:    opts.Logger,
		reference: opts.Reference,
		playfield: opts.Playfield,
		bounds:    config.DefaultBounds(),
		marker:    object.NewHandMarker(markerSize),
		dispatch:  func(fn func()) { go fn() },
	}
	if opts.Bounds != nil {
		s.bounds = *opts.Bounds
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.playfield.Width <= 0 || s.playfield.Height <= 0 {
		s.playfield = object.Playfield{Width: config.PlayfieldWidth, Height: config.PlayfieldHeight}
	}
	return s
}

// Start validates settings, opens the camera and begins a new run. Invalid
// limits are replaced by defaults and reported as notices. If the camera
// cannot be opened the returned error wraps capture.ErrCameraUnavailable or
// capture.ErrPermissionDenied and the session does not run.
//
// ctx bounds opening the camera only; the run lasts until Stop or a limit.
func (s *Session) Start(ctx context.Context, settings config.Settings) ([]config.Notice, error) {
	if s.camera == nil || s.detector == nil || s.surface == nil || s.scheduler == nil {
		return nil, errors.New("session: camera, detector, surface and scheduler are required")
	}

	s.mu.Lock()
	if s.state == StateRunning || s.state == StatePaused {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.mu.Unlock()

	settings, notices := s.bounds.Validate(settings)
	for _, n := range notices {
		s.logger.Warn("invalid setting replaced", "field", n.Field, "default", n.Default)
	}

	stream, err := s.camera.Open(ctx, capture.Constraints{
		Width:  int(s.playfield.Width),
		Height: int(s.playfield.Height),
	})
	if err != nil {
		if !errors.Is(err, capture.ErrCameraUnavailable) && !errors.Is(err, capture.ErrPermissionDenied) {
			err = fmt.Errorf("%w: %v", capture.ErrCameraUnavailable, err)
		}
		s.logger.Error("camera unavailable", "err", err)
		return notices, fmt.Errorf("start session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another Start may have won while the camera was opening.
	if s.state == StateRunning || s.state == StatePaused {
		_ = stream.Close()
		return notices, ErrAlreadyRunning
	}

	s.generation++
	s.state = StateRunning
	s.settings = settings
	s.score = 0
	s.hits = 0
	s.balls = nil
	s.particles = nil
	s.reason = ""
	s.result = Result{}
	s.firstHit = false
	s.startedAt = time.Time{}
	s.pausedAt = time.Time{}
	s.pausedTotal = 0
	s.marker.Hide()
	s.spawner = object.NewBallSpawner(s.rng, s.playfield.Width, settings.Difficulty)
	s.stream = stream
	s.runCtx, s.cancelRun = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	s.latest.Store(nil)

	go s.spawnLoop(s.runCtx, s.generation)
	s.cancelFrame = s.scheduler.ScheduleFrame(s.frame(s.generation))

	s.logger.Info("session started",
		"difficulty", settings.Difficulty,
		"time_limit", settings.TimeLimit,
		"balls_limit", settings.BallsLimit)

	return notices, nil
}

// Stop ends the run with reason "manually stopped". It is a no-op unless
// the session is running or paused. No frame, spawn or detection result
// mutates the session afterwards.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning && s.state != StatePaused {
		return
	}
	s.end(config.ReasonManuallyStopped)
}

// Pause suspends frames and spawning. Paused time does not count towards
// the time limit.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return
	}
	s.state = StatePaused
	s.pausedAt = s.clock.Now()
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	s.logger.Debug("session paused")
}

// Resume continues a paused run.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return
	}
	if s.firstHit {
		s.pausedTotal += s.clock.Since(s.pausedAt)
	}
	s.state = StateRunning
	// A hand seen before the pause is not caught after it, including one
	// from a request still in flight.
	s.epoch++
	s.latest.Store(nil)
	s.cancelFrame = s.scheduler.ScheduleFrame(s.frame(s.generation))
	s.logger.Debug("session resumed")
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		State:    s.state,
		Settings: s.settings,
		Score:    s.score,
		Hits:     s.hits,
		Elapsed:  s.elapsed(),
		Balls:    len(s.balls),
		Reason:   s.reason,
	}
}

// Result returns the outcome of the last finished run.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state == StateEnded
}

// Done returns a channel closed when the current run ends. It is nil
// before the first Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// frame returns the scheduled callback for run gen.
func (s *Session) frame(gen uint64) func() {
	return func() { s.tick(gen) }
}

// tick advances the run by one frame.
func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Frames from a stopped or previous run do nothing.
	if s.generation != gen || s.state != StateRunning {
		return
	}
	s.cancelFrame = nil

	// Fall and drop balls that left the playfield.
	uctx := object.UpdateContext{Delta: config.ClientTargetFrameTime, Playfield: s.playfield}
	s.balls = object.UpdateAll(s.balls, uctx)
	s.particles = object.UpdateAll(s.particles, uctx)

	s.render()

	s.requestDetection(gen)
	s.applyDetection(gen)

	if s.limitReached() {
		s.end(config.ReasonLimitReached)
		return
	}

	s.cancelFrame = s.scheduler.ScheduleFrame(s.frame(gen))
}

// render draws the playfield mirrored so it matches the player's view.
func (s *Session) render() {
	s.surface.Clear()
	s.surface.SetTransform(draw.Mirror(s.playfield.Width))

	dctx := object.DrawContext{Surface: s.surface}
	object.DrawAll(s.balls, dctx)
	object.DrawAll(s.particles, dctx)
	s.marker.Draw(dctx)

	s.surface.SetTransform(draw.Identity())
}

// requestDetection grabs a frame and estimates hands without blocking the
// frame. At most one request is in flight; its result lands in the latest
// slot for a later frame.
func (s *Session) requestDetection(gen uint64) {
	if !s.detecting.CompareAndSwap(false, true) {
		return
	}
	ctx, stream, detector, epoch := s.runCtx, s.stream, s.detector, s.epoch

	s.dispatch(func() {
		defer s.detecting.Store(false)

		frame, err := stream.Frame(ctx)
		if err != nil {
			s.latest.Store(&detection{generation: gen, epoch: epoch, err: fmt.Errorf("grab frame: %w", err)})
			return
		}
		hands, err := detector.EstimateHands(ctx, frame)
		s.latest.Store(&detection{generation: gen, epoch: epoch, hands: hands, err: err})
	})
}

// applyDetection consumes the latest detection result, if any, and scores
// every ball the hand touches.
func (s *Session) applyDetection(gen uint64) {
	d := s.latest.Swap(nil)
	if d == nil || d.generation != gen || d.epoch != s.epoch {
		return
	}
	if d.err != nil {
		if !errors.Is(d.err, context.Canceled) {
			s.logger.Debug("hand detection failed", "err", d.err)
		}
		s.marker.Hide()
		return
	}

	x, y, ok := catchPoint(d.hands, s.reference, s.playfield.Width)
	if !ok {
		s.marker.Hide()
		return
	}
	s.marker.MoveTo(x, y)

	var caught []*object.Ball
	s.balls, caught = catchBalls(s.balls, x, y)
	if len(caught) == 0 {
		return
	}

	if !s.firstHit {
		s.firstHit = true
		s.startedAt = s.clock.Now()
	}
	for _, b := range caught {
		s.hits++
		s.score += scoreFor(b.Kind)
		s.particles = append(s.particles,
			object.SpawnBurst(s.rng, b.X, b.Y, burstParticles, burstSpeed, burstLifetime, b.Kind.Color())...)
		s.logger.Debug("ball caught", "id", b.ID, "kind", b.Kind, "score", s.score, "hits", s.hits)
	}
}

// limitReached reports whether the hit or time limit has been met.
func (s *Session) limitReached() bool {
	if s.hits >= s.settings.BallsLimit {
		return true
	}
	return s.firstHit && s.elapsed() >= s.settings.TimeLimitDuration()
}

// elapsed is the play time since the first hit, excluding pauses.
func (s *Session) elapsed() time.Duration {
	if !s.firstHit {
		return 0
	}
	if s.state == StateEnded {
		return s.result.Elapsed
	}
	now := s.clock.Now()
	if s.state == StatePaused {
		now = s.pausedAt
	}
	return now.Sub(s.startedAt) - s.pausedTotal
}

// end finishes the run. Callers hold s.mu.
func (s *Session) end(reason string) {
	elapsed := s.elapsed()

	s.state = StateEnded
	s.reason = reason
	s.result = Result{
		Settings: s.settings,
		Score:    s.score,
		Hits:     s.hits,
		Elapsed:  elapsed,
		Reason:   reason,
	}

	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	s.cancelRun()
	if err := s.stream.Close(); err != nil {
		s.logger.Warn("close camera", "err", err)
	}

	object.ReleaseAll(s.particles)
	s.balls = nil
	s.particles = nil
	s.marker.Hide()
	s.surface.Clear()

	close(s.done)

	s.logger.Info("session ended",
		"reason", reason,
		"score", s.score,
		"hits", s.hits,
		"elapsed", elapsed.Round(10*time.Millisecond))
}

// spawnLoop adds one ball per SpawnInterval while run gen is running.
func (s *Session) spawnLoop(ctx context.Context, gen uint64) {
	ticker := s.clock.NewTicker(config.SpawnInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.spawn(gen)
		}
	}
}

// spawn adds a single ball unless the run is paused, ended or stale.
func (s *Session) spawn(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateRunning {
		return
	}
	s.balls = append(s.balls, s.spawner.Spawn())
}
