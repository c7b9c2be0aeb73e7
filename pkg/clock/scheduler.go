// Package clock 提供基于游戏时间的一次性定时任务调度
//
// 游戏逻辑运行在 ebiten 的单线程 Update 循环中，所有定时行为（生成间隔、
// 目标过期、点击爆裂动画结束、倒计时）都注册为显式的可取消任务，
// 由 Scheduler.Advance 在推进游戏时间时同步触发。
package clock

import (
	"math"
	"time"
)

// TaskID 是定时任务的句柄，0 表示无效句柄
type TaskID uint64

// task 是一个待触发的一次性任务
type task struct {
	id  TaskID
	due time.Duration // 触发时刻（游戏时间）
	fn  func()
}

// Scheduler 游戏时间驱动的一次性任务调度器
//
// 特性：
//   - 任务按 (触发时刻, ID) 顺序触发，同一时刻先注册的先触发
//   - 每次触发前重新查表，已被前一个回调取消的任务不会执行
//   - 回调中注册的新任务，如果在本次推进范围内到期，同样会在本次推进中触发
//
// Scheduler 不是并发安全的，只能在游戏主循环中使用。
type Scheduler struct {
	now    time.Duration
	nextID TaskID
	tasks  map[TaskID]*task
}

// NewScheduler 创建新的调度器，游戏时间从 0 开始
func NewScheduler() *Scheduler {
	return &Scheduler{
		nextID: 1,
		tasks:  make(map[TaskID]*task),
	}
}

// Now 返回当前游戏时间
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After 注册一个在 delay 之后触发的任务
// delay 小于 0 时按 0 处理（下一次 Advance 时触发）
func (s *Scheduler) After(delay time.Duration, fn func()) TaskID {
	if delay < 0 {
		delay = 0
	}
	id := s.nextID
	s.nextID++
	s.tasks[id] = &task{id: id, due: s.now + delay, fn: fn}
	return id
}

// Cancel 取消任务
// 返回任务是否仍处于待触发状态；对已触发、已取消或无效的句柄调用是安全的
func (s *Scheduler) Cancel(id TaskID) bool {
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

// Pending 返回待触发任务数量
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Remaining 返回任务距离触发的剩余时间
func (s *Scheduler) Remaining(id TaskID) (time.Duration, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return 0, false
	}
	return t.due - s.now, true
}

// Advance 推进游戏时间并按顺序触发所有到期任务
func (s *Scheduler) Advance(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	target := s.now + delta

	for {
		next := s.earliestDue(target)
		if next == nil {
			break
		}
		delete(s.tasks, next.id)
		// 回调执行时 Now() 返回任务自身的触发时刻
		s.now = next.due
		next.fn()
	}

	s.now = target
}

// AdvanceSeconds 以秒为单位推进游戏时间（与系统 Update(deltaTime) 约定一致）
// 按纳秒精度换算，避免 1/60 秒的帧间隔累积舍入误差
func (s *Scheduler) AdvanceSeconds(deltaTime float64) {
	s.Advance(time.Duration(math.Round(deltaTime * float64(time.Second))))
}

// earliestDue 查找触发时刻不晚于 limit 的最早任务
func (s *Scheduler) earliestDue(limit time.Duration) *task {
	var best *task
	for _, t := range s.tasks {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}

// Seconds 将秒数转换为 time.Duration，精确到毫秒
func Seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}
