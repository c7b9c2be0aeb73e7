package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/config"
	"github.com/decker502/boxpop/pkg/ecs"
	"github.com/decker502/boxpop/pkg/eventlog"
	"github.com/decker502/boxpop/pkg/game"
	"github.com/decker502/boxpop/pkg/systems"
	"github.com/decker502/boxpop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// 按钮尺寸
	ButtonWidth  = 160
	ButtonHeight = 48
	// RetryButtonY 重试按钮中心 Y
	RetryButtonY = 174

	// 调试字体单字符尺寸（ebitenutil.DebugPrint）
	debugCharWidth  = 6
	debugCharHeight = 16
)

var (
	backgroundColor = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
	buttonColor     = color.RGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}
	resultColor     = color.RGBA{R: 0xff, A: 0xff}
	textColor       = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
)

// GameSceneDeps 游戏场景依赖
// 所有字段都可以为 nil
type GameSceneDeps struct {
	Audio    *game.AudioManager
	EventLog *eventlog.Client
	// Pointer 替换默认的鼠标/触摸输入（测试用）
	Pointer systems.PointerSource
	// Rand 替换默认随机源（测试用）
	Rand systems.RandSource
}

// GameScene 唯一的游戏场景
//
// 持有一局游戏的全部运行时对象：ECS 世界、游戏时钟、目标注册表、
// 生成调度器与会话状态机。点击“开始”进入倒计时，结束后点击“Retry”回到初始状态。
type GameScene struct {
	cfg *config.GameConfig

	entityManager *ecs.EntityManager
	clock         *clock.Scheduler
	score         *game.ScoreTally
	registry      *systems.TargetRegistry
	scheduler     *systems.SpawnScheduler
	session       *game.Session

	inputSystem    *systems.InputSystem
	lifetimeSystem *systems.LifetimeSystem
	renderSystem   *systems.RenderSystem

	audio    *game.AudioManager
	eventLog *eventlog.Client
	pointer  systems.PointerSource

	// 本帧的点击（每帧只读取一次输入）
	frameClicked bool
	frameX       int
	frameY       int

	startButton utils.Rect
	retryButton utils.Rect
}

// NewGameScene 创建游戏场景
func NewGameScene(cfg *config.GameConfig, deps GameSceneDeps) *GameScene {
	s := &GameScene{
		cfg:           cfg,
		entityManager: ecs.NewEntityManager(),
		clock:         clock.NewScheduler(),
		score:         game.NewScoreTally(),
		audio:         deps.Audio,
		eventLog:      deps.EventLog,
		pointer:       deps.Pointer,
	}
	if s.pointer == nil {
		s.pointer = utils.IsJustTouchedOrClicked
	}

	s.registry = systems.NewTargetRegistry(s.entityManager, s.clock, s.score,
		float64(cfg.TargetSize), clock.Seconds(cfg.Session.BurstDuration))
	s.registry.SetOnBurst(s.onBurst)

	allocator := systems.NewPositionAllocator(cfg.Canvas.Width, cfg.Canvas.Height, cfg.TargetSize, deps.Rand)
	s.scheduler = systems.NewSpawnScheduler(s.clock, s.registry, allocator,
		systems.NewDelayCurveFromConfig(cfg), cfg.TotalTargets, cfg.MaxPlacementAttempts)

	// nil 指针不能直接作为接口传入
	var logger game.EventLogger
	if s.eventLog != nil && s.eventLog.Enabled() {
		logger = s.eventLog
	}
	s.session = game.NewSession(s.clock, s.scheduler, s.registry, s.score, logger, cfg.Session, cfg.TotalTargets)

	s.inputSystem = systems.NewInputSystem(s.registry, s.framePointer)
	s.lifetimeSystem = systems.NewLifetimeSystem(s.entityManager)
	s.renderSystem = systems.NewRenderSystem(s.entityManager)

	cx := float64(cfg.Canvas.Width) / 2
	s.startButton = utils.CenteredRect(cx, float64(cfg.Canvas.Height)/2, ButtonWidth, ButtonHeight)
	s.retryButton = utils.CenteredRect(cx, RetryButtonY, ButtonWidth, ButtonHeight)

	log.Printf("[GameScene] Created: %d targets on %dx%d canvas", cfg.TotalTargets, cfg.Canvas.Width, cfg.Canvas.Height)
	return s
}

// Session 返回会话状态机
func (s *GameScene) Session() *game.Session {
	return s.session
}

// Registry 返回目标注册表
func (s *GameScene) Registry() *systems.TargetRegistry {
	return s.registry
}

// Update 更新一帧
func (s *GameScene) Update(deltaTime float64) {
	s.frameClicked, s.frameX, s.frameY = s.pointer()
	if s.frameClicked {
		s.handleButtons(float64(s.frameX), float64(s.frameY))
	}

	s.inputSystem.SetEnabled(s.session.State() == game.StateActive)
	s.inputSystem.Update(deltaTime)

	s.session.Update(deltaTime)
	s.lifetimeSystem.Update(deltaTime)

	s.entityManager.RemoveMarkedEntities()
}

// handleButtons 处理开始与重试按钮
func (s *GameScene) handleButtons(x, y float64) {
	switch s.session.State() {
	case game.StateIdle:
		if s.startButton.Contains(x, y) {
			s.session.Start()
			s.frameClicked = false
		}
	case game.StateFinished:
		if s.session.RetryAvailable() && s.retryButton.Contains(x, y) {
			log.Printf("[GameScene] Retry clicked")
			s.session.Restart()
			s.frameClicked = false
		}
	}
}

func (s *GameScene) framePointer() (bool, int, int) {
	return s.frameClicked, s.frameX, s.frameY
}

func (s *GameScene) onBurst(id int) {
	if s.audio != nil {
		s.audio.PlayPop()
	}
}

// Draw 绘制场景
func (s *GameScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	s.renderSystem.Draw(screen)

	cx := float64(s.cfg.Canvas.Width) / 2
	cy := float64(s.cfg.Canvas.Height) / 2

	switch s.session.State() {
	case game.StateIdle:
		drawButton(screen, s.startButton, "START")
	case game.StateCountdown:
		drawLargeText(screen, fmt.Sprintf("%d", s.session.Countdown()), cx, cy, 6, textColor)
	case game.StateGo:
		drawLargeText(screen, "GO!", cx, cy, 6, textColor)
	case game.StateActive:
		drawLargeText(screen, fmt.Sprintf("%d", s.session.Score()), 24, 20, 2, textColor)
	case game.StateFinished:
		if result, ok := s.session.Result(); ok {
			drawLargeText(screen, "GAME OVER", cx, 70, 3, resultColor)
			drawLargeText(screen, fmt.Sprintf("Clicked: %d / %d (%.0f%%)",
				result.ClickedCount, result.TotalSquares, result.SuccessRate), cx, 110, 2, resultColor)
		}
		if s.session.RetryAvailable() {
			drawButton(screen, s.retryButton, "Retry")
		}
	}
}

// Close 等待进行中的日志上报完成
func (s *GameScene) Close() {
	s.session.Restart()
	if s.eventLog != nil {
		s.eventLog.Wait()
	}
	log.Printf("[GameScene] Closed")
}

// drawButton 绘制纯色按钮与居中文字
func drawButton(screen *ebiten.Image, r utils.Rect, label string) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), buttonColor, true)
	drawLargeText(screen, label, r.X+r.Width/2, r.Y+r.Height/2, 2, color.White)
}

// drawLargeText 以 (cx, cy) 为中心绘制放大的调试字体文字
func drawLargeText(screen *ebiten.Image, msg string, cx, cy, scale float64, clr color.Color) {
	w, h := len(msg)*debugCharWidth, debugCharHeight
	img := ebiten.NewImage(w, h)
	defer img.Deallocate()
	ebitenutil.DebugPrint(img, msg)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(cx-float64(w)*scale/2, cy-float64(h)*scale/2)
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(img, op)
}
