package game_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/config"
	"github.com/decker502/boxpop/pkg/ecs"
	"github.com/decker502/boxpop/pkg/game"
	"github.com/decker502/boxpop/pkg/systems"
)

type world struct {
	em        *ecs.EntityManager
	clock     *clock.Scheduler
	score     *game.ScoreTally
	registry  *systems.TargetRegistry
	scheduler *systems.SpawnScheduler
	session   *game.Session
}

func newWorld(seed int64) *world {
	cfg := config.DefaultGameConfig()
	w := &world{
		em:    ecs.NewEntityManager(),
		clock: clock.NewScheduler(),
		score: game.NewScoreTally(),
	}
	w.registry = systems.NewTargetRegistry(w.em, w.clock, w.score, float64(cfg.TargetSize), clock.Seconds(cfg.Session.BurstDuration))
	allocator := systems.NewPositionAllocator(cfg.Canvas.Width, cfg.Canvas.Height, cfg.TargetSize, rand.New(rand.NewSource(seed)))
	w.scheduler = systems.NewSpawnScheduler(w.clock, w.registry, allocator, systems.NewDelayCurveFromConfig(cfg), cfg.TotalTargets, cfg.MaxPlacementAttempts)
	w.session = game.NewSession(w.clock, w.scheduler, w.registry, w.score, nil, cfg.Session, cfg.TotalTargets)
	return w
}

// tick 以 60 FPS 推进一帧
func (w *world) tick() {
	w.session.Update(1.0 / 60)
	w.em.RemoveMarkedEntities()
}

func TestRestartMidActiveLeavesNoPendingTasks(t *testing.T) {
	w := newWorld(1)
	w.session.Start()

	// 推进到场上有 5 个目标
	for i := 0; i < 60*60 && w.registry.LiveCount() < 5; i++ {
		w.tick()
	}
	if w.session.State() != game.StateActive || w.registry.LiveCount() < 5 {
		t.Fatalf("Setup failed: state=%v live=%d", w.session.State(), w.registry.LiveCount())
	}

	// 点掉其中一个，留下一个爆裂计时器
	targets := w.registry.Targets()
	w.registry.Burst(targets[0].ID)

	w.session.Restart()
	w.em.RemoveMarkedEntities()

	if w.clock.Pending() != 0 {
		t.Errorf("Pending tasks after restart: %d", w.clock.Pending())
	}
	if w.registry.LiveCount() != 0 || w.registry.TimerCount() != 0 || w.registry.BurstTimerCount() != 0 {
		t.Error("Registry should be empty after restart")
	}
	if w.scheduler.Counter() != 1 || w.score.Count() != 0 {
		t.Errorf("Counters not reset: counter=%d score=%d", w.scheduler.Counter(), w.score.Count())
	}
	if w.session.State() != game.StateIdle {
		t.Errorf("State after restart: %v", w.session.State())
	}
	if w.em.EntityCount() != 0 {
		t.Errorf("Entities left after restart: %d", w.em.EntityCount())
	}

	// 之后的时间推进不会产生任何目标
	for i := 0; i < 60*10; i++ {
		w.tick()
	}
	if w.registry.LiveCount() != 0 {
		t.Error("No target should appear after restart")
	}
}

func TestFullGameClickingEveryTarget(t *testing.T) {
	w := newWorld(2)
	w.session.Start()

	for i := 0; i < 60*300 && w.session.State() != game.StateFinished; i++ {
		for _, target := range w.registry.Targets() {
			if target.State == components.TargetAlive {
				w.registry.Burst(target.ID)
			}
		}
		w.tick()
		if w.registry.TimerCount() != w.registry.AliveCount() {
			t.Fatalf("Timer invariant broken at %v", w.clock.Now())
		}
	}

	result, ok := w.session.Result()
	if !ok {
		t.Fatalf("Game did not finish, state=%v", w.session.State())
	}
	if result.ClickedCount != 50 || result.SuccessRate != 100 {
		t.Errorf("Result: %+v", result)
	}
	if w.registry.LiveCount() != 0 {
		t.Error("Registry should be empty after Finished")
	}
}

func TestFullGameWithoutClicks(t *testing.T) {
	w := newWorld(3)
	w.session.Start()

	for i := 0; i < 60*300 && w.session.State() != game.StateFinished; i++ {
		w.tick()
	}

	result, ok := w.session.Result()
	if !ok {
		t.Fatal("Game should finish when every target expires")
	}
	if result.ClickedCount != 0 || result.SuccessRate != 0 {
		t.Errorf("Result: %+v", result)
	}
	// 唯一剩余的任务是重试按钮延迟
	if w.clock.Pending() != 1 {
		t.Errorf("Pending tasks: %d, want 1", w.clock.Pending())
	}
	w.session.Update(time.Second.Seconds())
	if !w.session.RetryAvailable() || w.clock.Pending() != 0 {
		t.Error("Retry should be available and the clock idle")
	}
}
