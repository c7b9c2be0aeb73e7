// Package app 提供游戏应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：日志、持久化存储、用户标识、
// 事件上报、音频与场景管理。main.go 只负责解析参数并调用 NewApp()。
package app

import (
	"image/color"
	"io"
	"log"
	"time"

	"github.com/decker502/boxpop/pkg/config"
	"github.com/decker502/boxpop/pkg/eventlog"
	"github.com/decker502/boxpop/pkg/game"
	"github.com/decker502/boxpop/pkg/scenes"
	"github.com/decker502/boxpop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName 持久化存储目录名
const AppName = "boxpop"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Game 游戏配置（时序曲线、画布、事件上报）
	Game *config.GameConfig
	// SoundPath 点击音效文件，为空使用合成音效
	SoundPath string
	// DisableAudio 不创建音频上下文（无音频设备环境）
	DisableAudio bool
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg             *config.GameConfig
	sceneManager    *game.SceneManager
	settingsManager *game.SettingsManager
	verbose         bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gameCfg := cfg.Game
	if gameCfg == nil {
		gameCfg = config.DefaultGameConfig()
	}
	if err := gameCfg.Validate(); err != nil {
		return nil, err
	}

	// 持久化存储不可用时降级为内存模式
	if err := utils.EnsureStorageDir(AppName); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
	gdataManager, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, settings will not persist: %v", err)
		gdataManager = nil
	}

	settingsManager := game.NewSettingsManager(gdataManager)
	identity := game.NewIdentityManager(gdataManager)
	log.Printf("[App] User ID: %s", identity.UserID())

	eventLog := eventlog.NewClient(gameCfg.EventLog.Endpoint, identity.UserID(),
		time.Duration(gameCfg.EventLog.TimeoutSeconds*float64(time.Second)))
	if eventLog.Enabled() {
		log.Printf("[App] Event log endpoint: %s", gameCfg.EventLog.Endpoint)
	} else {
		log.Printf("[App] Event log disabled (no endpoint)")
	}

	// 初始化音频上下文
	var audioContext *audio.Context
	if !cfg.DisableAudio {
		audioContext = audio.NewContext(game.SampleRate)
	}
	audioManager := game.NewAudioManager(audioContext, settingsManager, cfg.SoundPath)
	log.Printf("[App] AudioManager initialized")

	// 创建场景管理器
	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scenes.NewGameScene(gameCfg, scenes.GameSceneDeps{
		Audio:    audioManager,
		EventLog: eventLog,
	}))

	if !utils.IsMobile() && settingsManager.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		cfg:             gameCfg,
		sceneManager:    sceneManager,
		settingsManager: settingsManager,
		verbose:         cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Canvas.Width, a.cfg.Canvas.Height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏并保存设置（移动端始终全屏）
	if !utils.IsMobile() && inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := a.settingsManager.ToggleFullscreen()
	ebiten.SetFullscreen(fullscreen)
	if !fullscreen {
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
	}
	log.Printf("[App] Fullscreen: %v", fullscreen)
}

// Draw 绘制游戏画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 全屏时左右两边填充黑色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Canvas.Width, a.cfg.Canvas.Height
}

// GetSceneManager 返回场景管理器
// 用于在游戏关闭时等待日志上报完成
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
