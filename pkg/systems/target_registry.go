package systems

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
	"github.com/decker502/boxpop/pkg/entities"
	"github.com/decker502/boxpop/pkg/game"
)

// Target 目标快照
type Target struct {
	ID    int
	X     int
	Y     int
	State components.TargetState
}

// TargetRegistry 目标注册表与生命周期控制器
//
// 职责：
//   - 持有当前所有存活/爆裂中的目标（以 ECS 实体存储）
//   - 持有每个存活目标的过期计时器句柄
//   - 作为移除目标的唯一入口：过期（Expire）与点击爆裂（Burst）
//
// 不变量：
//   - 过期计时器存在 ⇔ 目标处于 Alive 状态
//   - 目标离开 Alive 状态时，在同一步内同步取消其过期计时器
//   - 对不存在或已爆裂的目标调用 Expire/Burst 是无副作用的空操作，
//     因为计时器回调与点击事件在设计上可能交错
type TargetRegistry struct {
	entityManager *ecs.EntityManager
	clock         *clock.Scheduler
	score         *game.ScoreTally
	size          float64
	burstDuration time.Duration

	entities     map[int]ecs.EntityID // 目标序号 -> 实体
	expiryTimers map[int]clock.TaskID // 存活目标的过期计时器
	burstTimers  map[int]clock.TaskID // 爆裂目标的移除计时器
	onBurst      func(id int)         // 点击成功回调（播放音效等）
}

// NewTargetRegistry 创建目标注册表
// 参数:
//   - em: EntityManager 实例
//   - clk: 游戏时间调度器
//   - score: 本局计分器（点击成功时累加）
//   - size: 目标边长
//   - burstDuration: 爆裂动画时长，结束后目标被移除
func NewTargetRegistry(em *ecs.EntityManager, clk *clock.Scheduler, score *game.ScoreTally, size float64, burstDuration time.Duration) *TargetRegistry {
	return &TargetRegistry{
		entityManager: em,
		clock:         clk,
		score:         score,
		size:          size,
		burstDuration: burstDuration,
		entities:      make(map[int]ecs.EntityID),
		expiryTimers:  make(map[int]clock.TaskID),
		burstTimers:   make(map[int]clock.TaskID),
	}
}

// SetOnBurst 设置点击成功回调
func (r *TargetRegistry) SetOnBurst(fn func(id int)) {
	r.onBurst = fn
}

// Spawn 注册一个新的存活目标及其过期计时器
//
// 重复的目标序号说明 SpawnScheduler 与注册表的约定被破坏，属于程序错误，直接 panic。
func (r *TargetRegistry) Spawn(target Target, expiry clock.TaskID) {
	if _, exists := r.entities[target.ID]; exists {
		panic(fmt.Sprintf("target %d already registered", target.ID))
	}

	lifetime, _ := r.clock.Remaining(expiry)
	entity := entities.NewTargetEntity(r.entityManager, target.ID, target.X, target.Y, r.size, lifetime, r.burstDuration)

	r.entities[target.ID] = entity
	r.expiryTimers[target.ID] = expiry

	log.Printf("[TargetRegistry] Spawned target %d at (%d, %d), lifetime=%v", target.ID, target.X, target.Y, lifetime)
}

// Expire 移除目标
//
// 合法调用方只有两个：过期计时器回调，以及爆裂动画结束回调。
// 无条件移除目标并取消其所有计时器；目标不存在时为空操作（幂等）。
func (r *TargetRegistry) Expire(id int) {
	entity, ok := r.entities[id]
	if !ok {
		return
	}

	r.cancelTimers(id)
	delete(r.entities, id)
	r.entityManager.DestroyEntity(entity)

	log.Printf("[TargetRegistry] Removed target %d (live=%d)", id, len(r.entities))
}

// Burst 处理玩家点击
//
// 目标不存在或已在爆裂中时为空操作，计分不变。
// 否则：计分+1，取消过期计时器，进入 Bursting 状态，
// 并在 burstDuration 之后通过 Expire 移除。
//
// 返回：是否点击成功
func (r *TargetRegistry) Burst(id int) bool {
	entity, ok := r.entities[id]
	if !ok {
		return false
	}
	target, ok := ecs.GetComponent[*components.TargetComponent](r.entityManager, entity)
	if !ok || target.State == components.TargetBursting {
		return false
	}

	r.score.Add()

	// 爆裂期间不得再自动过期
	if h, ok := r.expiryTimers[id]; ok {
		r.clock.Cancel(h)
		delete(r.expiryTimers, id)
	}

	target.State = components.TargetBursting
	target.BurstElapsed = 0
	if clickable, ok := ecs.GetComponent[*components.ClickableComponent](r.entityManager, entity); ok {
		clickable.IsEnabled = false
	}

	r.burstTimers[id] = r.clock.After(r.burstDuration, func() {
		r.Expire(id)
	})

	log.Printf("[TargetRegistry] Burst target %d (score=%d)", id, r.score.Count())

	if r.onBurst != nil {
		r.onBurst(id)
	}
	return true
}

// Clear 取消所有计时器并移除所有目标（会话重开时调用）
func (r *TargetRegistry) Clear() {
	for id, entity := range r.entities {
		r.cancelTimers(id)
		r.entityManager.DestroyEntity(entity)
	}
	r.entities = make(map[int]ecs.EntityID)
	r.expiryTimers = make(map[int]clock.TaskID)
	r.burstTimers = make(map[int]clock.TaskID)
}

// cancelTimers 取消并删除目标的过期与爆裂计时器
func (r *TargetRegistry) cancelTimers(id int) {
	if h, ok := r.expiryTimers[id]; ok {
		r.clock.Cancel(h)
		delete(r.expiryTimers, id)
	}
	if h, ok := r.burstTimers[id]; ok {
		r.clock.Cancel(h)
		delete(r.burstTimers, id)
	}
}

// LiveCount 返回注册表中的目标数量（存活 + 爆裂中）
func (r *TargetRegistry) LiveCount() int {
	return len(r.entities)
}

// AliveCount 返回处于 Alive 状态的目标数量
func (r *TargetRegistry) AliveCount() int {
	n := 0
	for _, entity := range r.entities {
		if target, ok := ecs.GetComponent[*components.TargetComponent](r.entityManager, entity); ok && target.State == components.TargetAlive {
			n++
		}
	}
	return n
}

// TimerCount 返回过期计时器数量（应始终等于 AliveCount）
func (r *TargetRegistry) TimerCount() int {
	return len(r.expiryTimers)
}

// BurstTimerCount 返回爆裂移除计时器数量
func (r *TargetRegistry) BurstTimerCount() int {
	return len(r.burstTimers)
}

// Get 返回指定目标的快照
func (r *TargetRegistry) Get(id int) (Target, bool) {
	entity, ok := r.entities[id]
	if !ok {
		return Target{}, false
	}
	return r.snapshot(id, entity), true
}

// Targets 返回所有目标的快照（按序号升序）
func (r *TargetRegistry) Targets() []Target {
	result := make([]Target, 0, len(r.entities))
	for id, entity := range r.entities {
		result = append(result, r.snapshot(id, entity))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Positions 返回所有目标的位置（供 PositionAllocator 做重叠检测）
// 爆裂中的目标仍占据位置，直到被移除
func (r *TargetRegistry) Positions() []Position {
	targets := r.Targets()
	result := make([]Position, 0, len(targets))
	for _, t := range targets {
		result = append(result, Position{X: t.X, Y: t.Y})
	}
	return result
}

// TargetAt 返回覆盖点 (x, y) 的可点击目标
// 多个目标重叠时返回序号最大的（最后绘制、位于最上层）
func (r *TargetRegistry) TargetAt(x, y float64) (int, bool) {
	bestID, found := 0, false
	for id, entity := range r.entities {
		pos, ok := ecs.GetComponent[*components.PositionComponent](r.entityManager, entity)
		if !ok {
			continue
		}
		clickable, ok := ecs.GetComponent[*components.ClickableComponent](r.entityManager, entity)
		if !ok || !clickable.IsEnabled {
			continue
		}
		if clickable.Contains(pos.X, pos.Y, x, y) && (!found || id > bestID) {
			bestID, found = id, true
		}
	}
	return bestID, found
}

func (r *TargetRegistry) snapshot(id int, entity ecs.EntityID) Target {
	t := Target{ID: id}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](r.entityManager, entity); ok {
		t.X, t.Y = int(pos.X), int(pos.Y)
	}
	if target, ok := ecs.GetComponent[*components.TargetComponent](r.entityManager, entity); ok {
		t.State = target.State
	}
	return t
}
