package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 窗口与画布尺寸（逻辑像素）
const (
	GameWindowWidth  = 800
	GameWindowHeight = 600
)

// GameConfig 游戏配置
// 对应 data/game.yaml，所有时间字段以秒为单位
type GameConfig struct {
	Canvas               CanvasConfig   `yaml:"canvas"`               // 目标可出现的画布区域
	TargetSize           int            `yaml:"targetSize"`           // 目标边长（像素）
	TotalTargets         int            `yaml:"totalTargets"`         // 每局目标总数 N
	MaxPlacementAttempts int            `yaml:"maxPlacementAttempts"` // 单次生成的最大随机放置尝试次数
	SpawnDelay           CurveConfig    `yaml:"spawnDelay"`           // 生成间隔曲线
	Lifetime             CurveConfig    `yaml:"lifetime"`             // 目标存活时间曲线
	Session              SessionConfig  `yaml:"session"`              // 会话状态机时序
	EventLog             EventLogConfig `yaml:"eventLog"`             // 事件日志上报
}

// CanvasConfig 画布尺寸
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CurveConfig 分段线性曲线
// 按序号落入的阶段插值，超出最后一个阶段后使用 Final
type CurveConfig struct {
	Phases []CurvePhase `yaml:"phases"`
	Final  float64      `yaml:"final"`
}

// CurvePhase 曲线的一个线性阶段（闭区间 [From, To]）
//
// value(i) = max(End, Start - (i-From) * (Start-End)/Steps)
type CurvePhase struct {
	From  int     `yaml:"from"`
	To    int     `yaml:"to"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Steps int     `yaml:"steps"`
}

// SessionConfig 会话时序配置
type SessionConfig struct {
	CountdownFrom int     `yaml:"countdownFrom"` // 倒计时起始数字
	CountdownStep float64 `yaml:"countdownStep"` // 每个数字停留时间
	GoDuration    float64 `yaml:"goDuration"`    // "GO!" 停留时间
	SettleDelay   float64 `yaml:"settleDelay"`   // 最后一个目标消失到结束的等待时间
	RetryDelay    float64 `yaml:"retryDelay"`    // 结束到重试按钮出现的等待时间
	BurstDuration float64 `yaml:"burstDuration"` // 点击爆裂动画时长
}

// EventLogConfig 事件日志上报配置
type EventLogConfig struct {
	Endpoint       string  `yaml:"endpoint"`       // 日志服务地址，如 "http://localhost:3001"，为空则不上报
	TimeoutSeconds float64 `yaml:"timeoutSeconds"` // 单次请求超时
}

// DefaultGameConfig 返回默认配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Canvas:               CanvasConfig{Width: GameWindowWidth, Height: GameWindowHeight},
		TargetSize:           40,
		TotalTargets:         50,
		MaxPlacementAttempts: 50,
		SpawnDelay: CurveConfig{
			Phases: []CurvePhase{
				{From: 1, To: 9, Start: 2.0, End: 0.9, Steps: 8},
				{From: 10, To: 24, Start: 1.0, End: 0.4, Steps: 14},
			},
			Final: 0.4,
		},
		Lifetime: CurveConfig{
			Phases: []CurvePhase{
				{From: 1, To: 10, Start: 7.0, End: 4.5, Steps: 9},
				{From: 11, To: 25, Start: 5.0, End: 2.5, Steps: 14},
			},
			Final: 2.5,
		},
		Session: SessionConfig{
			CountdownFrom: 3,
			CountdownStep: 1.0,
			GoDuration:    1.0,
			SettleDelay:   1.0,
			RetryDelay:    1.0,
			BurstDuration: 0.3,
		},
		EventLog: EventLogConfig{
			Endpoint:       "",
			TimeoutSeconds: 5.0,
		},
	}
}

// LoadGameConfig 从 YAML 文件加载游戏配置
func LoadGameConfig(filePath string) (*GameConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig 解析 YAML 配置数据
// 未出现的字段保留默认值
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置的有效性
func (c *GameConfig) Validate() error {
	if c.TargetSize <= 0 {
		return fmt.Errorf("targetSize must be > 0, got %d", c.TargetSize)
	}
	// 随机坐标范围为 [0, width-size)，必须非空
	if c.Canvas.Width <= c.TargetSize || c.Canvas.Height <= c.TargetSize {
		return fmt.Errorf("canvas %dx%d must be larger than targetSize %d",
			c.Canvas.Width, c.Canvas.Height, c.TargetSize)
	}
	if c.TotalTargets < 1 {
		return fmt.Errorf("totalTargets must be >= 1, got %d", c.TotalTargets)
	}
	if c.MaxPlacementAttempts < 1 {
		return fmt.Errorf("maxPlacementAttempts must be >= 1, got %d", c.MaxPlacementAttempts)
	}

	if err := c.SpawnDelay.validate(); err != nil {
		return fmt.Errorf("spawnDelay: %w", err)
	}
	if err := c.Lifetime.validate(); err != nil {
		return fmt.Errorf("lifetime: %w", err)
	}

	s := c.Session
	if s.CountdownFrom < 0 {
		return fmt.Errorf("session.countdownFrom must be >= 0, got %d", s.CountdownFrom)
	}
	for name, v := range map[string]float64{
		"countdownStep": s.CountdownStep,
		"goDuration":    s.GoDuration,
		"settleDelay":   s.SettleDelay,
		"retryDelay":    s.RetryDelay,
		"burstDuration": s.BurstDuration,
	} {
		if v < 0 {
			return fmt.Errorf("session.%s must be >= 0, got %v", name, v)
		}
	}

	if c.EventLog.TimeoutSeconds <= 0 {
		return fmt.Errorf("eventLog.timeoutSeconds must be > 0, got %v", c.EventLog.TimeoutSeconds)
	}

	return nil
}

// validate 检查曲线阶段从 1 开始连续覆盖，且每个阶段单调不增、下限为正
func (cc *CurveConfig) validate() error {
	next := 1
	for i, p := range cc.Phases {
		if p.From != next {
			return fmt.Errorf("phase %d must start at %d, got %d", i+1, next, p.From)
		}
		if p.To < p.From {
			return fmt.Errorf("phase %d range [%d, %d] is empty", i+1, p.From, p.To)
		}
		if p.Steps < 1 {
			return fmt.Errorf("phase %d steps must be >= 1, got %d", i+1, p.Steps)
		}
		if p.End <= 0 {
			return fmt.Errorf("phase %d end must be > 0, got %v", i+1, p.End)
		}
		if p.Start < p.End {
			return fmt.Errorf("phase %d start %v must be >= end %v", i+1, p.Start, p.End)
		}
		next = p.To + 1
	}
	if cc.Final <= 0 {
		return fmt.Errorf("final must be > 0, got %v", cc.Final)
	}
	return nil
}
