package entities

import (
	"time"

	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
)

// NewTargetEntity 创建一个目标方块实体
// 参数:
//   - manager: EntityManager 实例
//   - targetID: 目标生成序号(1..N)
//   - x, y: 左上角坐标
//   - size: 边长(像素)
//   - lifetime: 自动过期前的存活时间
//   - burstTime: 点击后爆裂动画时长
//
// 返回: 创建的实体ID
func NewTargetEntity(manager *ecs.EntityManager, targetID, x, y int, size float64, lifetime, burstTime time.Duration) ecs.EntityID {
	id := manager.CreateEntity()

	ecs.AddComponent(manager, id, &components.PositionComponent{
		X: float64(x),
		Y: float64(y),
	})

	ecs.AddComponent(manager, id, &components.TargetComponent{
		ID:        targetID,
		State:     components.TargetAlive,
		Size:      size,
		BurstTime: burstTime.Seconds(),
	})

	// 存活进度仅用于显示剩余时间
	ecs.AddComponent(manager, id, &components.LifetimeComponent{
		MaxLifetime:     lifetime.Seconds(),
		CurrentLifetime: 0,
	})

	ecs.AddComponent(manager, id, &components.ClickableComponent{
		Width:     size,
		Height:    size,
		IsEnabled: true,
	})

	return id
}
