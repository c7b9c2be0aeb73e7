package systems

import (
	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
)

// LifetimeSystem 推进目标的显示用计时
//
// 存活目标累加 CurrentLifetime，爆裂目标累加 BurstElapsed。
// 本系统只服务于渲染，不销毁实体；移除由 TargetRegistry 的计时器负责。
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 更新所有目标实体
func (s *LifetimeSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith2[*components.TargetComponent, *components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		target, _ := ecs.GetComponent[*components.TargetComponent](s.entityManager, id)
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)

		switch target.State {
		case components.TargetAlive:
			lifetime.CurrentLifetime += deltaTime
			if lifetime.CurrentLifetime > lifetime.MaxLifetime {
				lifetime.CurrentLifetime = lifetime.MaxLifetime
			}
		case components.TargetBursting:
			target.BurstElapsed += deltaTime
			if target.BurstElapsed > target.BurstTime {
				target.BurstElapsed = target.BurstTime
			}
		}
	}
}
