package systems

import (
	"math"
	"time"

	"github.com/decker502/boxpop/pkg/clock"
	"github.com/decker502/boxpop/pkg/config"
)

// DelayCurve 难度曲线
//
// 根据目标的生成序号（从 1 开始）给出：
//   - NextSpawnDelay: 生成该目标后，到生成下一个目标的等待时间
//   - Lifetime: 该目标自动过期前的存活时间
//
// 两条曲线都是分段线性的纯函数，不持有任何运行时状态。
type DelayCurve struct {
	spawnDelay config.CurveConfig
	lifetime   config.CurveConfig
}

// NewDelayCurve 根据配置创建难度曲线
func NewDelayCurve(spawnDelay, lifetime config.CurveConfig) *DelayCurve {
	return &DelayCurve{
		spawnDelay: spawnDelay,
		lifetime:   lifetime,
	}
}

// NewDelayCurveFromConfig 从游戏配置创建难度曲线
func NewDelayCurveFromConfig(cfg *config.GameConfig) *DelayCurve {
	return NewDelayCurve(cfg.SpawnDelay, cfg.Lifetime)
}

// NextSpawnDelay 返回生成第 index 个目标后的等待时间
func (c *DelayCurve) NextSpawnDelay(index int) time.Duration {
	return clock.Seconds(evaluateCurve(c.spawnDelay, index))
}

// Lifetime 返回第 index 个目标的存活时间
func (c *DelayCurve) Lifetime(index int) time.Duration {
	return clock.Seconds(evaluateCurve(c.lifetime, index))
}

// evaluateCurve 计算曲线在 index 处的值（秒）
// 插值结果以阶段终值为下限，避免浮点误差产生低于下限或负数的时长
func evaluateCurve(curve config.CurveConfig, index int) float64 {
	for _, p := range curve.Phases {
		if index < p.From || index > p.To {
			continue
		}
		step := float64(index - p.From)
		dec := (p.Start - p.End) / float64(p.Steps)
		return math.Max(p.End, p.Start-dec*step)
	}
	return curve.Final
}
