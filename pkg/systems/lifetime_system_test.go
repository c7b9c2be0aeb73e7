package systems

import (
	"testing"
	"time"

	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
	"github.com/decker502/boxpop/pkg/entities"
)

func TestLifetimeAdvancesAliveTargets(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)
	id := entities.NewTargetEntity(em, 1, 0, 0, 40, 10*time.Second, 300*time.Millisecond)

	system.Update(5.0)

	lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if lifetime.CurrentLifetime != 5.0 {
		t.Errorf("Expected CurrentLifetime=5.0, got %f", lifetime.CurrentLifetime)
	}
	if lifetime.RemainingFraction() != 0.5 {
		t.Errorf("Expected RemainingFraction=0.5, got %f", lifetime.RemainingFraction())
	}
}

func TestLifetimeDoesNotDestroy(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)
	id := entities.NewTargetEntity(em, 1, 0, 0, 40, 10*time.Second, 300*time.Millisecond)

	system.Update(12.0)
	em.RemoveMarkedEntities()

	if !em.Exists(id) {
		t.Fatal("LifetimeSystem must not destroy targets")
	}
	lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if lifetime.CurrentLifetime != 10.0 {
		t.Errorf("CurrentLifetime should clamp to MaxLifetime, got %f", lifetime.CurrentLifetime)
	}
}

func TestLifetimeAdvancesBurst(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)
	id := entities.NewTargetEntity(em, 1, 0, 0, 40, 10*time.Second, 300*time.Millisecond)

	target, _ := ecs.GetComponent[*components.TargetComponent](em, id)
	lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
	system.Update(1.0)
	target.State = components.TargetBursting

	system.Update(0.15)
	if lifetime.CurrentLifetime != 1.0 {
		t.Errorf("Lifetime should freeze while bursting, got %f", lifetime.CurrentLifetime)
	}
	if target.BurstProgress() < 0.49 || target.BurstProgress() > 0.51 {
		t.Errorf("BurstProgress: got %f, want 0.5", target.BurstProgress())
	}

	system.Update(1.0)
	if target.BurstProgress() != 1 {
		t.Errorf("BurstProgress should clamp to 1, got %f", target.BurstProgress())
	}
}
