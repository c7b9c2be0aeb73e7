package systems

import (
	"log"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/components"
)

// SpawnScheduler 目标生成调度器
//
// 按序号依次生成全部 N 个目标。每一步的等待时间取决于该步自身的序号，
// 因此这是一条逐步重新注册的一次性任务链，而不是固定周期的循环。
//
// 放置失败时不生成目标、不推进序号，在下一个间隔后重试同一序号。
type SpawnScheduler struct {
	clock       *clock.Scheduler
	registry    *TargetRegistry
	allocator   *PositionAllocator
	curve       *DelayCurve
	total       int // 目标总数 N
	maxAttempts int // 单步最大放置尝试次数

	counter    int          // 下一个要生成的序号（1..N+1）
	pending    clock.TaskID // 下一步的任务句柄，0 表示无
	running    bool
	allSpawned bool
	skipped    int // 因放置失败而跳过的步数
}

// NewSpawnScheduler 创建生成调度器
func NewSpawnScheduler(clk *clock.Scheduler, registry *TargetRegistry, allocator *PositionAllocator, curve *DelayCurve, total, maxAttempts int) *SpawnScheduler {
	return &SpawnScheduler{
		clock:       clk,
		registry:    registry,
		allocator:   allocator,
		curve:       curve,
		total:       total,
		maxAttempts: maxAttempts,
		counter:     1,
	}
}

// Start 从序号 1 开始生成，立即执行第一步
// 已在运行时为空操作
func (s *SpawnScheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.allSpawned = false
	s.counter = 1
	s.skipped = 0

	log.Printf("[SpawnScheduler] Started: total=%d", s.total)
	s.runStep()
}

// Reset 取消待执行的步骤并回到初始状态（会话重开时调用）
func (s *SpawnScheduler) Reset() {
	if s.pending != 0 {
		s.clock.Cancel(s.pending)
		s.pending = 0
	}
	s.running = false
	s.allSpawned = false
	s.counter = 1
	s.skipped = 0
}

// runStep 执行一步生成
func (s *SpawnScheduler) runStep() {
	s.pending = 0

	if s.counter > s.total {
		s.allSpawned = true
		s.running = false
		log.Printf("[SpawnScheduler] All %d targets spawned (skipped steps=%d)", s.total, s.skipped)
		return
	}

	index := s.counter
	pos, ok := s.allocator.Allocate(s.registry.Positions(), s.maxAttempts)
	if ok {
		id := index
		expiry := s.clock.After(s.curve.Lifetime(index), func() {
			s.registry.Expire(id)
		})
		s.registry.Spawn(Target{ID: id, X: pos.X, Y: pos.Y, State: components.TargetAlive}, expiry)
		s.counter++
	} else {
		s.skipped++
		log.Printf("[SpawnScheduler] No free position for target %d after %d attempts, retrying", index, s.maxAttempts)
	}

	s.pending = s.clock.After(s.curve.NextSpawnDelay(index), s.runStep)
}

// AllSpawned 返回是否已生成全部目标
func (s *SpawnScheduler) AllSpawned() bool {
	return s.allSpawned
}

// IsRunning 返回生成链是否仍在进行
func (s *SpawnScheduler) IsRunning() bool {
	return s.running
}

// Counter 返回下一个要生成的序号
func (s *SpawnScheduler) Counter() int {
	return s.counter
}

// SpawnedCount 返回已生成的目标数量
func (s *SpawnScheduler) SpawnedCount() int {
	return s.counter - 1
}

// Skipped 返回因放置失败而跳过的步数
func (s *SpawnScheduler) Skipped() int {
	return s.skipped
}
