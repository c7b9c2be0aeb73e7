package game

import (
	"testing"
	"time"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/config"
)

type fakeSpawner struct {
	started    int
	resets     int
	allSpawned bool
}

func (f *fakeSpawner) Start()           { f.started++ }
func (f *fakeSpawner) Reset()           { f.resets++; f.allSpawned = false }
func (f *fakeSpawner) AllSpawned() bool { return f.allSpawned }

type fakeTargets struct {
	live    int
	cleared int
}

func (f *fakeTargets) LiveCount() int { return f.live }
func (f *fakeTargets) Clear()         { f.cleared++; f.live = 0 }

type recordingLogger struct {
	starts []time.Time
	ends   []GameResult
}

func (r *recordingLogger) GameStart(clickedAt time.Time) { r.starts = append(r.starts, clickedAt) }
func (r *recordingLogger) GameEnd(result GameResult)     { r.ends = append(r.ends, result) }

type sessionFixture struct {
	clock   *clock.Scheduler
	spawner *fakeSpawner
	targets *fakeTargets
	score   *ScoreTally
	logger  *recordingLogger
	session *Session
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		clock:   clock.NewScheduler(),
		spawner: &fakeSpawner{},
		targets: &fakeTargets{},
		score:   NewScoreTally(),
		logger:  &recordingLogger{},
	}
	timing := config.DefaultGameConfig().Session
	f.session = NewSession(f.clock, f.spawner, f.targets, f.score, f.logger, timing, 50)
	return f
}

func TestSessionStartsIdle(t *testing.T) {
	f := newSessionFixture()
	if f.session.State() != StateIdle {
		t.Errorf("Initial state: got %v, want Idle", f.session.State())
	}
	if _, ok := f.session.Result(); ok {
		t.Error("Result should not be available before the game ends")
	}
}

func TestSessionCountdownSequence(t *testing.T) {
	f := newSessionFixture()
	clickedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.session.now = func() time.Time { return clickedAt }

	if !f.session.Start() {
		t.Fatal("Start from Idle should succeed")
	}
	if len(f.logger.starts) != 1 || !f.logger.starts[0].Equal(clickedAt) {
		t.Errorf("game_start should be logged once with clickedAt, got %v", f.logger.starts)
	}

	expected := []struct {
		state     SessionState
		countdown int
	}{
		{StateCountdown, 3},
		{StateCountdown, 2},
		{StateCountdown, 1},
		{StateGo, 0},
		{StateActive, 0},
	}
	for i, want := range expected {
		if i > 0 {
			f.session.Update(1.0)
		}
		if f.session.State() != want.state {
			t.Fatalf("Step %d: state %v, want %v", i, f.session.State(), want.state)
		}
		if want.state == StateCountdown && f.session.Countdown() != want.countdown {
			t.Errorf("Step %d: countdown %d, want %d", i, f.session.Countdown(), want.countdown)
		}
	}

	if f.spawner.started != 1 {
		t.Errorf("Spawner should be started once on Active, got %d", f.spawner.started)
	}
}

func TestSessionStartOnlyFromIdle(t *testing.T) {
	f := newSessionFixture()
	f.session.Start()

	if f.session.Start() {
		t.Error("Start during countdown should be rejected")
	}
	if len(f.logger.starts) != 1 {
		t.Errorf("game_start logged %d times, want 1", len(f.logger.starts))
	}
}

func TestSessionCountdownUsesGameTime(t *testing.T) {
	f := newSessionFixture()
	f.session.Start()

	// 60 帧 * 1/60 秒 = 1 秒
	for i := 0; i < 59; i++ {
		f.session.Update(1.0 / 60)
	}
	if f.session.Countdown() != 3 {
		t.Fatalf("Countdown should still be 3 before one second elapses, got %d", f.session.Countdown())
	}
	f.session.Update(1.0 / 60)
	if f.session.Countdown() != 2 {
		t.Errorf("Countdown should be 2 after one second, got %d", f.session.Countdown())
	}
}

// runToActive 从 Idle 推进到 Active
func (f *sessionFixture) runToActive(t *testing.T) {
	t.Helper()
	f.session.Start()
	for i := 0; i < 4; i++ {
		f.session.Update(1.0)
	}
	if f.session.State() != StateActive {
		t.Fatalf("Expected Active, got %v", f.session.State())
	}
}

func TestSessionFinishesAfterSettle(t *testing.T) {
	f := newSessionFixture()
	f.runToActive(t)

	f.targets.live = 2
	f.spawner.allSpawned = true
	f.session.Update(5.0)
	if f.session.State() != StateActive {
		t.Fatal("Session must not finish while targets are live")
	}

	f.targets.live = 0
	f.score.Add()
	f.score.Add()
	f.session.Update(0)
	if f.session.State() != StateActive {
		t.Fatal("Session should wait for the settle delay")
	}

	f.session.Update(0.999)
	if f.session.State() != StateActive {
		t.Fatal("Settle delay not yet elapsed")
	}
	f.session.Update(0.001)
	if f.session.State() != StateFinished {
		t.Fatalf("Expected Finished, got %v", f.session.State())
	}

	result, ok := f.session.Result()
	if !ok {
		t.Fatal("Result should be available")
	}
	want := GameResult{TotalSquares: 50, ClickedCount: 2, SuccessRate: 4}
	if result != want {
		t.Errorf("Result: got %+v, want %+v", result, want)
	}
	if len(f.logger.ends) != 1 || f.logger.ends[0] != want {
		t.Errorf("game_end should be logged once with result, got %v", f.logger.ends)
	}
}

func TestSessionRetryAvailableAfterDelay(t *testing.T) {
	f := newSessionFixture()
	f.runToActive(t)
	f.spawner.allSpawned = true
	f.session.Update(0)
	f.session.Update(1.0)

	if f.session.State() != StateFinished {
		t.Fatalf("Expected Finished, got %v", f.session.State())
	}
	if f.session.RetryAvailable() {
		t.Error("Retry should not be available immediately")
	}
	f.session.Update(1.0)
	if !f.session.RetryAvailable() {
		t.Error("Retry should be available after the retry delay")
	}
}

func TestSessionRestartFromEveryState(t *testing.T) {
	advance := map[SessionState]func(f *sessionFixture){
		StateIdle:      func(f *sessionFixture) {},
		StateCountdown: func(f *sessionFixture) { f.session.Start() },
		StateGo: func(f *sessionFixture) {
			f.session.Start()
			f.session.Update(3.0)
		},
		StateActive: func(f *sessionFixture) {
			f.session.Start()
			f.session.Update(4.0)
		},
		StateFinished: func(f *sessionFixture) {
			f.session.Start()
			f.session.Update(4.0)
			f.spawner.allSpawned = true
			f.session.Update(0)
			f.session.Update(1.0)
		},
	}

	for state, setup := range advance {
		t.Run(state.String(), func(t *testing.T) {
			f := newSessionFixture()
			setup(f)
			if f.session.State() != state {
				t.Fatalf("Setup reached %v, want %v", f.session.State(), state)
			}

			f.score.Add()
			f.session.Restart()

			if f.session.State() != StateIdle {
				t.Errorf("State after restart: %v", f.session.State())
			}
			if f.clock.Pending() != 0 {
				t.Errorf("Pending tasks after restart: %d", f.clock.Pending())
			}
			if f.score.Count() != 0 {
				t.Errorf("Score after restart: %d", f.score.Count())
			}
			if f.spawner.resets != 1 || f.targets.cleared != 1 {
				t.Errorf("Restart should reset spawner and clear targets")
			}
			if f.session.RetryAvailable() {
				t.Error("Retry flag should be cleared")
			}

			// 重启后可以再次开始
			if !f.session.Start() {
				t.Error("Start after restart should succeed")
			}
		})
	}
}

func TestSessionRestartDuringCountdownStopsTransitions(t *testing.T) {
	f := newSessionFixture()
	f.session.Start()
	f.session.Update(1.5)
	f.session.Restart()

	f.session.Update(10.0)
	if f.session.State() != StateIdle {
		t.Errorf("Cancelled countdown must not advance, got %v", f.session.State())
	}
	if f.spawner.started != 0 {
		t.Error("Spawner must not start after restart")
	}
}

func TestSessionNilLogger(t *testing.T) {
	s := NewSession(clock.NewScheduler(), &fakeSpawner{}, &fakeTargets{}, NewScoreTally(), nil, config.DefaultGameConfig().Session, 50)
	if !s.Start() {
		t.Error("Start should work without a logger")
	}
}
