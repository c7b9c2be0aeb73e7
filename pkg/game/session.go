package game

import (
	"log"
	"time"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/config"
)

// SessionState 会话状态
type SessionState int

const (
	StateIdle      SessionState = iota // 等待玩家点击开始
	StateCountdown                     // 倒计时 3..1
	StateGo                            // 显示 "GO!"
	StateActive                        // 目标生成中
	StateFinished                      // 本局结束，显示结果
)

// String 返回状态名称
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCountdown:
		return "Countdown"
	case StateGo:
		return "Go"
	case StateActive:
		return "Active"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Spawner 目标生成器（由 systems.SpawnScheduler 实现）
type Spawner interface {
	Start()
	Reset()
	AllSpawned() bool
}

// TargetSet 当前目标集合（由 systems.TargetRegistry 实现）
type TargetSet interface {
	LiveCount() int
	Clear()
}

// EventLogger 游戏事件上报接口
// 实现必须是非阻塞的，上报失败不得影响游戏流程
type EventLogger interface {
	GameStart(clickedAt time.Time)
	GameEnd(result GameResult)
}

// GameResult 一局的结算数据
type GameResult struct {
	TotalSquares int
	ClickedCount int
	SuccessRate  float64 // 百分比 0-100
}

type noopEventLogger struct{}

func (noopEventLogger) GameStart(time.Time) {}
func (noopEventLogger) GameEnd(GameResult)  {}

// Session 游戏会话状态机
//
// Idle -> Countdown(n) -> Go -> Active -> Finished
//
// 所有状态转换都由时钟任务驱动，同一时刻最多只有一个会话任务在等待；
// Restart 可在任意状态调用，会取消全部计时器并回到 Idle。
type Session struct {
	clock   *clock.Scheduler
	spawner Spawner
	targets TargetSet
	score   *ScoreTally
	logger  EventLogger
	timing  config.SessionConfig
	total   int

	state          SessionState
	countdown      int          // 当前倒计时数字
	task           clock.TaskID // 当前等待中的会话任务
	retryTask      clock.TaskID // 重试按钮延迟任务
	retryAvailable bool
	result         GameResult

	now func() time.Time
}

// NewSession 创建会话
// logger 可以为 nil，此时不上报事件
func NewSession(clk *clock.Scheduler, spawner Spawner, targets TargetSet, score *ScoreTally, logger EventLogger, timing config.SessionConfig, total int) *Session {
	if logger == nil {
		logger = noopEventLogger{}
	}
	return &Session{
		clock:   clk,
		spawner: spawner,
		targets: targets,
		score:   score,
		logger:  logger,
		timing:  timing,
		total:   total,
		state:   StateIdle,
		now:     time.Now,
	}
}

// Start 开始一局（仅在 Idle 状态有效）
// 返回：是否成功开始
func (s *Session) Start() bool {
	if s.state != StateIdle {
		return false
	}

	s.logger.GameStart(s.now())
	log.Printf("[Session] Game start, countdown from %d", s.timing.CountdownFrom)

	s.enterCountdown(s.timing.CountdownFrom)
	return true
}

// enterCountdown 显示数字 n，countdownStep 之后减一；减到 0 立即进入 Go
func (s *Session) enterCountdown(n int) {
	if n <= 0 {
		s.enterGo()
		return
	}
	s.state = StateCountdown
	s.countdown = n
	s.task = s.clock.After(clock.Seconds(s.timing.CountdownStep), func() {
		s.task = 0
		s.enterCountdown(n - 1)
	})
}

func (s *Session) enterGo() {
	s.state = StateGo
	s.countdown = 0
	s.task = s.clock.After(clock.Seconds(s.timing.GoDuration), func() {
		s.task = 0
		s.enterActive()
	})
}

func (s *Session) enterActive() {
	s.state = StateActive
	log.Printf("[Session] Active")
	s.spawner.Start()
}

// Update 推进游戏时间并检查结束条件
func (s *Session) Update(deltaTime float64) {
	s.clock.AdvanceSeconds(deltaTime)
	s.checkCompletion()
}

// checkCompletion 全部目标已生成且场上为空时，等待 settleDelay 后结束
func (s *Session) checkCompletion() {
	if s.state != StateActive || s.task != 0 {
		return
	}
	if !s.spawner.AllSpawned() || s.targets.LiveCount() != 0 {
		return
	}
	s.task = s.clock.After(clock.Seconds(s.timing.SettleDelay), func() {
		s.task = 0
		s.finish()
	})
}

func (s *Session) finish() {
	s.state = StateFinished
	s.result = GameResult{
		TotalSquares: s.total,
		ClickedCount: s.score.Count(),
		SuccessRate:  s.score.SuccessRate(s.total),
	}

	log.Printf("[Session] Finished: clicked %d/%d (%.1f%%)",
		s.result.ClickedCount, s.result.TotalSquares, s.result.SuccessRate)
	s.logger.GameEnd(s.result)

	s.retryTask = s.clock.After(clock.Seconds(s.timing.RetryDelay), func() {
		s.retryTask = 0
		s.retryAvailable = true
	})
}

// Restart 回到 Idle
//
// 任意状态下均可调用：取消会话任务、停止生成、清除全部目标及其计时器、计分清零。
func (s *Session) Restart() {
	if s.task != 0 {
		s.clock.Cancel(s.task)
		s.task = 0
	}
	if s.retryTask != 0 {
		s.clock.Cancel(s.retryTask)
		s.retryTask = 0
	}

	s.spawner.Reset()
	s.targets.Clear()
	s.score.Reset()

	s.state = StateIdle
	s.countdown = 0
	s.retryAvailable = false
	s.result = GameResult{}

	log.Printf("[Session] Restarted")
}

// State 返回当前状态
func (s *Session) State() SessionState {
	return s.state
}

// Countdown 返回倒计时数字（仅在 Countdown 状态有意义）
func (s *Session) Countdown() int {
	return s.countdown
}

// RetryAvailable 返回重试按钮是否可用
func (s *Session) RetryAvailable() bool {
	return s.retryAvailable
}

// Result 返回本局结果，未结束时 ok 为 false
func (s *Session) Result() (GameResult, bool) {
	return s.result, s.state == StateFinished
}

// Score 返回当前成功点击数
func (s *Session) Score() int {
	return s.score.Count()
}

// Total 返回每局目标总数
func (s *Session) Total() int {
	return s.total
}
