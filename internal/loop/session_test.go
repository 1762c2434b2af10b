package loop

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/tomz197/ballcatch/internal/capture"
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/draw"
	"github.com/tomz197/ballcatch/internal/loop/config"
	"github.com/tomz197/ballcatch/internal/object"
)

// recordingSurface logs drawing calls in order.
type recordingSurface struct {
	ops []string
}

func (r *recordingSurface) Clear() { r.ops = append(r.ops, "clear") }
func (r *recordingSurface) SetTransform(t draw.Transform) {
	r.ops = append(r.ops, fmt.Sprintf("transform %g %g", t.ScaleX, t.TranslateX))
}
func (r *recordingSurface) FillCircle(x, y, radius float64, c draw.Color) {
	r.ops = append(r.ops, fmt.Sprintf("circle %g %g %g %d", x, y, radius, c))
}
func (r *recordingSurface) Plot(float64, float64, draw.Color)              {}
func (r *recordingSurface) DrawLine(draw.Point, draw.Point, draw.Color) {}

type failingCamera struct{ err error }

func (c failingCamera) Open(context.Context, capture.Constraints) (capture.Stream, error) {
	return nil, c.err
}

type detectorFunc func(ctx context.Context, frame capture.Frame) ([]detect.Hand, error)

func (f detectorFunc) EstimateHands(ctx context.Context, frame capture.Frame) ([]detect.Hand, error) {
	return f(ctx, frame)
}

type harness struct {
	s       *Session
	queue   *FrameQueue
	clock   *testclock.FakeClock
	pointer *detect.Pointer
	surface *recordingSurface
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()

	h := &harness{
		queue:   NewFrameQueue(),
		clock:   testclock.NewFakeClock(time.Unix(1_700_000_000, 0)),
		pointer: detect.NewPointer(config.PlayfieldWidth, config.PlayfieldHeight),
		surface: &recordingSurface{},
	}
	o := Options{
		Camera:    capture.Virtual{},
		Detector:  h.pointer,
		Surface:   h.surface,
		Scheduler: h.queue,
		Clock:     h.clock,
		Rand:      rand.New(rand.NewSource(7)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	h.s = NewSession(o)
	h.s.dispatch = func(fn func()) { fn() }
	t.Cleanup(h.s.Stop)
	return h
}

func (h *harness) start(t *testing.T, settings config.Settings) {
	t.Helper()
	notices, err := h.s.Start(context.Background(), settings)
	require.NoError(t, err)
	require.Empty(t, notices)
}

// addBall places a motionless ball on the playfield.
func (h *harness) addBall(x, y float64, kind object.Kind) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.balls = append(h.s.balls, &object.Ball{X: x, Y: y, Radius: config.BallRadius, Kind: kind})
}

func (h *harness) balls() []object.Ball {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	out := make([]object.Ball, 0, len(h.s.balls))
	for _, b := range h.s.balls {
		out = append(out, *b)
	}
	return out
}

// aimAt moves the pointer onto b as it will be after one more tick.
func (h *harness) aimAt(b object.Ball) {
	h.pointer.SetPosition(config.PlayfieldWidth-b.X, b.Y+b.Speed)
}

// frame runs exactly one scheduled tick.
func (h *harness) frame(t *testing.T) {
	t.Helper()
	require.Equal(t, 1, h.queue.RunPending(), "one frame pending")
}

func (h *harness) generation() uint64 {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.generation
}

func withBounds(b config.Bounds) func(*Options) {
	return func(o *Options) { o.Bounds = &b }
}

func TestStart_CameraFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"denied", fmt.Errorf("open: %w", capture.ErrPermissionDenied), capture.ErrPermissionDenied},
		{"unavailable", capture.ErrCameraUnavailable, capture.ErrCameraUnavailable},
		{"other", errors.New("no such device"), capture.ErrCameraUnavailable},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, func(o *Options) { o.Camera = failingCamera{err: tt.err} })
			_, err := h.s.Start(context.Background(), config.DefaultSettings())
			require.ErrorIs(t, err, tt.want)

			assert.Equal(t, StateIdle, h.s.Status().State)
			assert.Zero(t, h.queue.Len(), "no frame scheduled")
			assert.Nil(t, h.s.Done())
		})
	}
}

func TestStart_ReplacesInvalidLimits(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	notices, err := h.s.Start(context.Background(), config.Settings{Difficulty: config.Hard, TimeLimit: 500, BallsLimit: 2})
	require.NoError(t, err)
	require.Len(t, notices, 2)

	st := h.s.Status()
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, 60, st.Settings.TimeLimit)
	assert.Equal(t, 20, st.Settings.BallsLimit)
	assert.Equal(t, config.Hard, st.Settings.Difficulty)
}

func TestStart_AlreadyRunning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.DefaultSettings())

	_, err := h.s.Start(context.Background(), config.DefaultSettings())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	h.s.Pause()
	_, err = h.s.Start(context.Background(), config.DefaultSettings())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestTick_ScoreIsBenignMinusFivePenalty(t *testing.T) {
	t.Parallel()

	const benign, penalty = 7, 3

	h := newHarness(t)
	h.start(t, config.Settings{TimeLimit: 60, BallsLimit: 100})

	h.pointer.SetPosition(540, 50)
	for i := 0; i < benign; i++ {
		h.addBall(100, 50, object.Benign)
	}
	for i := 0; i < penalty; i++ {
		h.addBall(100+float64(i), 55, object.Penalty)
	}
	h.addBall(400, 400, object.Benign) // out of reach

	h.frame(t)

	st := h.s.Status()
	assert.Equal(t, benign-5*penalty, st.Score)
	assert.Equal(t, benign+penalty, st.Hits)
	assert.Equal(t, 1, st.Balls)
	assert.Equal(t, StateRunning, st.State)
}

func TestTick_MirroredHitTest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cameraX float64
		hit     bool
	}{
		{"unmirrored position misses", 450, false},
		{"mirrored position hits", 550, true},
		{"exactly radius plus tolerance misses", 510, false},
		{"just inside the boundary hits", 510.1, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.start(t, config.DefaultSettings())
			h.addBall(100, 50, object.Benign)
			h.pointer.SetPosition(tt.cameraX, 50)

			h.frame(t)

			if tt.hit {
				assert.Equal(t, 1, h.s.Status().Hits)
				assert.Empty(t, h.balls())
			} else {
				assert.Zero(t, h.s.Status().Hits)
				assert.Len(t, h.balls(), 1)
			}
		})
	}
}

func TestTick_PalmReference(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(o *Options) { o.Reference = detect.ReferencePalm })
	h.start(t, config.DefaultSettings())
	h.addBall(100, 50, object.Benign)
	h.pointer.SetPosition(540, 50)

	h.frame(t)
	assert.Equal(t, 1, h.s.Status().Hits)
}

func TestTick_RenderOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.pointer.SetHidden(true)
	h.start(t, config.DefaultSettings())
	h.addBall(100, 50, object.Benign)
	h.addBall(200, 60, object.Penalty)

	h.frame(t)

	assert.Equal(t, []string{
		"clear",
		"transform -1 640",
		fmt.Sprintf("circle 100 50 20 %d", draw.ColorGreen),
		fmt.Sprintf("circle 200 60 20 %d", draw.ColorRed),
		"transform 1 0",
	}, h.surface.ops)
}

func TestTick_BallsFallAndLeave(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.pointer.SetHidden(true)
	h.start(t, config.DefaultSettings())

	h.s.mu.Lock()
	h.s.balls = append(h.s.balls,
		&object.Ball{ID: 1, X: 100, Y: 0, Radius: 20, Speed: 4},
		&object.Ball{ID: 2, X: 300, Y: 478, Radius: 20, Speed: 4})
	h.s.mu.Unlock()

	h.frame(t)

	balls := h.balls()
	require.Len(t, balls, 1, "ball past the bottom edge is dropped")
	assert.Equal(t, uint64(1), balls[0].ID)
	assert.Equal(t, 4.0, balls[0].Y)
	assert.Zero(t, h.s.Status().Score, "a miss does not score")
}

func TestTick_DetectorErrorIsNoHand(t *testing.T) {
	t.Parallel()

	h := newHarness(t, func(o *Options) {
		o.Detector = detectorFunc(func(context.Context, capture.Frame) ([]detect.Hand, error) {
			return nil, errors.New("model crashed")
		})
	})
	h.start(t, config.DefaultSettings())
	h.addBall(100, 50, object.Benign)

	h.frame(t)

	assert.Zero(t, h.s.Status().Hits)
	assert.Equal(t, StateRunning, h.s.Status().State)
	assert.Equal(t, 1, h.queue.Len(), "next frame scheduled")
}

func TestTick_DetectionResultAppliedOnce(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var queued []func()
	h.s.dispatch = func(fn func()) { queued = append(queued, fn) }
	h.start(t, config.Settings{TimeLimit: 60, BallsLimit: 100})
	h.pointer.SetPosition(540, 50)

	// The request from the first frame completes between frames.
	h.frame(t)
	require.Len(t, queued, 1)
	queued[0]()

	h.addBall(100, 50, object.Benign)
	h.frame(t)
	assert.Equal(t, 1, h.s.Status().Hits)

	// No new result: a ball placed on the same spot is not caught again.
	h.addBall(100, 50, object.Benign)
	h.frame(t)
	assert.Equal(t, 1, h.s.Status().Hits)
}

func TestTick_StaleDetectionDiscarded(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.s.dispatch = func(func()) {} // never completes
	h.start(t, config.DefaultSettings())
	h.addBall(100, 50, object.Benign)

	hands, err := detect.NewPointer(640, 480).EstimateHands(context.Background(), capture.Frame{})
	require.NoError(t, err)
	hands[0].Keypoints[2].X, hands[0].Keypoints[2].Y = 540, 50
	h.s.latest.Store(&detection{generation: h.generation() - 1, hands: hands})

	h.frame(t)
	assert.Zero(t, h.s.Status().Hits)
	assert.Nil(t, h.s.latest.Load(), "slot consumed")
}

func TestElapsed_StartsAtFirstHit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.DefaultSettings())

	h.clock.Step(3 * time.Second)
	h.pointer.SetHidden(true)
	h.frame(t)
	assert.Zero(t, h.s.Status().Elapsed, "no hit yet")

	h.pointer.SetHidden(false)
	h.pointer.SetPosition(540, 50)
	h.addBall(100, 50, object.Benign)
	h.frame(t)
	require.Equal(t, 1, h.s.Status().Hits)

	h.clock.Step(2 * time.Second)
	assert.Equal(t, 2*time.Second, h.s.Status().Elapsed)
}

func TestTimeLimit_EndsAtTickBoundary(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.Settings{TimeLimit: 10, BallsLimit: 20})
	h.pointer.SetPosition(540, 50)
	h.addBall(100, 50, object.Benign)
	h.frame(t)

	h.clock.Step(10 * time.Second)
	assert.Equal(t, StateRunning, h.s.Status().State, "checked only when a frame runs")

	h.frame(t)

	res, ok := h.s.Result()
	require.True(t, ok)
	assert.Equal(t, config.ReasonLimitReached, res.Reason)
	assert.Equal(t, 10*time.Second, res.Elapsed)
	assert.Equal(t, 1, res.Hits)
	assert.Zero(t, h.queue.Len())
}

func TestPauseResume(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.DefaultSettings())
	h.pointer.SetPosition(540, 50)
	h.addBall(100, 50, object.Benign)
	h.frame(t)

	h.clock.Step(time.Second)
	h.s.Pause()
	assert.Equal(t, StatePaused, h.s.Status().State)
	assert.Zero(t, h.queue.Len(), "frame cancelled while paused")

	n := len(h.balls())
	h.s.spawn(h.generation())
	assert.Len(t, h.balls(), n, "no spawning while paused")

	h.clock.Step(5 * time.Second)
	assert.Equal(t, time.Second, h.s.Status().Elapsed)

	h.s.Resume()
	assert.Equal(t, 1, h.queue.Len())
	h.clock.Step(time.Second)
	assert.Equal(t, 2*time.Second, h.s.Status().Elapsed, "paused time excluded")
	assert.Equal(t, 1, h.s.Status().Score, "state kept across pause")
}

func TestResume_DropsDetectionInFlightAtPause(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var queued []func()
	h.s.dispatch = func(fn func()) { queued = append(queued, fn) }
	h.start(t, config.Settings{TimeLimit: 60, BallsLimit: 100})
	h.pointer.SetPosition(540, 50)

	// The request is issued before the pause and finishes after Resume.
	h.frame(t)
	require.Len(t, queued, 1)
	h.s.Pause()
	h.s.Resume()
	queued[0]()

	h.addBall(100, 50, object.Benign)
	h.frame(t)
	assert.Zero(t, h.s.Status().Hits, "hand seen before the pause is ignored")

	// The same frame issued a fresh request; its result counts.
	require.Len(t, queued, 2)
	queued[1]()
	h.frame(t)
	assert.Equal(t, 1, h.s.Status().Hits)
}

func TestStop_NoMutationAfterwards(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.DefaultSettings())
	h.pointer.SetPosition(540, 50)
	h.addBall(100, 50, object.Benign)
	h.frame(t)
	gen := h.generation()

	h.s.Stop()
	before := h.s.Status()
	assert.Equal(t, StateEnded, before.State)
	assert.Equal(t, config.ReasonManuallyStopped, before.Reason)
	assert.Zero(t, before.Balls, "ball set cleared")
	assert.Zero(t, h.queue.Len(), "pending frame cancelled")

	select {
	case <-h.s.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}

	// Callbacks racing with Stop find the session ended.
	h.s.tick(gen)
	h.s.spawn(gen)
	h.clock.Step(5 * time.Second)
	h.s.Stop()

	after := h.s.Status()
	assert.Equal(t, before, after)
}

func TestSpawner_OneBallPerSecond(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.pointer.SetHidden(true)
	h.start(t, config.DefaultSettings())

	for i := 1; i <= 3; i++ {
		require.Eventually(t, h.clock.HasWaiters, time.Second, time.Millisecond)
		h.clock.Step(config.SpawnInterval)
		require.Eventually(t, func() bool { return len(h.balls()) == i }, time.Second, time.Millisecond)
	}
}

func TestEndToEnd_BallsLimitReached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bounds    config.Bounds
		settings  config.Settings
		wantScore int // checked when non-zero
	}{
		{
			name:     "single ball",
			bounds:   config.Bounds{TimeLimit: config.Range{Min: 10, Max: 300, Default: 60}, BallsLimit: config.Range{Min: 1, Max: 100, Default: 20}},
			settings:  config.Settings{Difficulty: config.Easy, TimeLimit: 60, BallsLimit: 1},
			wantScore: 1,
		},
		{
			name:     "default bounds",
			bounds:   config.DefaultBounds(),
			settings: config.Settings{Difficulty: config.Hard, TimeLimit: 60, BallsLimit: 5},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, withBounds(tt.bounds))
			h.start(t, tt.settings)

			score := 0
			for hit := 1; hit <= tt.settings.BallsLimit; hit++ {
				require.Eventually(t, h.clock.HasWaiters, time.Second, time.Millisecond)
				h.clock.Step(config.SpawnInterval)
				require.Eventually(t, func() bool { return len(h.balls()) == 1 }, time.Second, time.Millisecond)

				ball := h.balls()[0]
				if tt.wantScore > 0 {
					assert.Equal(t, object.Benign, ball.Kind)
				}
				score += scoreFor(ball.Kind)

				h.aimAt(ball)
				h.frame(t)
				require.Equal(t, hit, h.s.Status().Hits)
			}

			select {
			case <-h.s.Done():
			case <-time.After(time.Second):
				t.Fatal("session did not end")
			}
			res, ok := h.s.Result()
			require.True(t, ok)
			assert.Equal(t, config.ReasonLimitReached, res.Reason)
			assert.Equal(t, tt.settings.BallsLimit, res.Hits)
			assert.Equal(t, score, res.Score)
			if tt.wantScore != 0 {
				assert.Equal(t, tt.wantScore, res.Score)
			}
			assert.Zero(t, h.s.Status().Balls)
		})
	}
}

func TestRestart_ResetsState(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.start(t, config.DefaultSettings())
	h.pointer.SetPosition(540, 50)
	h.addBall(100, 50, object.Penalty)
	h.frame(t)
	require.Equal(t, -5, h.s.Status().Score)
	h.s.Stop()

	h.start(t, config.DefaultSettings())
	st := h.s.Status()
	assert.Equal(t, StateRunning, st.State)
	assert.Zero(t, st.Score)
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Elapsed)
	assert.Empty(t, st.Reason)
}
