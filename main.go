package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/boxpop/pkg/app"
	"github.com/decker502/boxpop/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

// 日志服务地址的环境变量，优先级高于配置文件，低于 -endpoint
const endpointEnv = "BOXPOP_LOG_ENDPOINT"

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "游戏配置文件路径（默认使用内置配置）")
	endpoint   = flag.String("endpoint", "", "事件日志服务地址，如 http://localhost:3001")
	soundPath  = flag.String("sound", "", "点击音效文件（wav/ogg/mp3）")
	noAudio    = flag.Bool("no-audio", false, "禁用音频")
)

func main() {
	flag.Parse()

	gameCfg := loadGameConfig(*configPath)
	if v, ok := os.LookupEnv(endpointEnv); ok {
		gameCfg.EventLog.Endpoint = v
	}
	if *endpoint != "" {
		gameCfg.EventLog.Endpoint = *endpoint
	}

	application, err := app.NewApp(app.Config{
		Verbose:      *verbose,
		Game:         gameCfg,
		SoundPath:    *soundPath,
		DisableAudio: *noAudio,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(gameCfg.Canvas.Width, gameCfg.Canvas.Height)
	ebiten.SetWindowTitle("Box Pop")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(application)

	// 退出前等待日志上报完成
	application.GetSceneManager().Close()

	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}

// loadGameConfig 加载配置文件，失败时回退到内置配置
func loadGameConfig(path string) *config.GameConfig {
	if path != "" {
		cfg, err := config.LoadGameConfig(path)
		if err == nil {
			return cfg
		}
		log.Printf("[Main] Warning: %v, using embedded defaults", err)
	}

	cfg, err := config.ParseGameConfig(defaultGameConfig)
	if err != nil {
		log.Printf("[Main] Warning: embedded config invalid: %v", err)
		return config.DefaultGameConfig()
	}
	return cfg
}
