package systems

import (
	"math/rand"
)

// Position 目标左上角坐标（像素）
type Position struct {
	X int
	Y int
}

// RandSource 随机数来源
// *rand.Rand 满足该接口；测试中可替换为固定序列
type RandSource interface {
	Intn(n int) int
}

// PositionAllocator 位置分配器
//
// 在画布内随机选取不与任何存活目标重叠的位置。
// 两个边长为 size 的方块重叠，当且仅当 x 距离和 y 距离都严格小于 size。
type PositionAllocator struct {
	width  int // 画布宽度
	height int // 画布高度
	size   int // 目标边长
	rng    RandSource
}

// NewPositionAllocator 创建位置分配器
// rng 为 nil 时使用全局随机源
func NewPositionAllocator(width, height, size int, rng RandSource) *PositionAllocator {
	if rng == nil {
		rng = globalRand{}
	}
	return &PositionAllocator{
		width:  width,
		height: height,
		size:   size,
		rng:    rng,
	}
}

// Allocate 尝试最多 maxAttempts 次随机放置
//
// 返回：
//   - Position: 找到的位置
//   - bool: 是否找到；false 表示本次放弃（可恢复，由调用方决定重试）
func (a *PositionAllocator) Allocate(live []Position, maxAttempts int) (Position, bool) {
	for i := 0; i < maxAttempts; i++ {
		candidate := Position{
			X: a.rng.Intn(a.width - a.size),
			Y: a.rng.Intn(a.height - a.size),
		}
		if !a.overlapsAny(candidate, live) {
			return candidate, true
		}
	}
	return Position{}, false
}

// Overlaps 判断两个位置上的方块是否重叠
func (a *PositionAllocator) Overlaps(p, q Position) bool {
	return absInt(p.X-q.X) < a.size && absInt(p.Y-q.Y) < a.size
}

func (a *PositionAllocator) overlapsAny(candidate Position, live []Position) bool {
	for _, p := range live {
		if a.Overlaps(candidate, p) {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// globalRand 使用 math/rand 的全局随机源
type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n)
}
