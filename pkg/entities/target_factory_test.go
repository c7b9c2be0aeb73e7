package entities

import (
	"testing"
	"time"

	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
)

func TestNewTargetEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	id := NewTargetEntity(em, 7, 120, 80, 40, 4500*time.Millisecond, 300*time.Millisecond)

	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok {
		t.Fatal("Missing PositionComponent")
	}
	if pos.X != 120 || pos.Y != 80 {
		t.Errorf("Position: got (%v, %v), want (120, 80)", pos.X, pos.Y)
	}

	target, ok := ecs.GetComponent[*components.TargetComponent](em, id)
	if !ok {
		t.Fatal("Missing TargetComponent")
	}
	if target.ID != 7 || target.State != components.TargetAlive {
		t.Errorf("Target: got id=%d state=%v", target.ID, target.State)
	}
	if target.BurstTime != 0.3 {
		t.Errorf("BurstTime: got %v, want 0.3", target.BurstTime)
	}

	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if !ok {
		t.Fatal("Missing LifetimeComponent")
	}
	if lifetime.MaxLifetime != 4.5 {
		t.Errorf("MaxLifetime: got %v, want 4.5", lifetime.MaxLifetime)
	}

	clickable, ok := ecs.GetComponent[*components.ClickableComponent](em, id)
	if !ok {
		t.Fatal("Missing ClickableComponent")
	}
	if !clickable.IsEnabled || clickable.Width != 40 || clickable.Height != 40 {
		t.Errorf("Clickable: got %+v", clickable)
	}
}
