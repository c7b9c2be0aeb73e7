package systems

import (
	"image/color"
	"sort"

	"github.com/decker502/boxpop/pkg/components"
	"github.com/decker502/boxpop/pkg/ecs"
	"github.com/decker502/boxpop/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	// burstMaxScale 爆裂动画结束时的缩放倍数
	burstMaxScale = 1.5
	// lifetimeBarHeight 剩余时间条高度（像素）
	lifetimeBarHeight = 4
)

var (
	freshColor    = color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff} // 刚生成
	expiringColor = color.RGBA{R: 0xf4, G: 0x43, B: 0x36, A: 0xff} // 即将过期
	burstColor    = color.RGBA{R: 0xff, G: 0xeb, B: 0x3b, A: 0xff}
	barColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}
)

// targetAppearance 一帧内目标的绘制参数
type targetAppearance struct {
	X, Y, Size float64
	Color      color.RGBA
	Bar        float64 // 剩余时间条比例，爆裂中为 0
}

// appearanceOf 根据目标状态计算绘制参数
//
// 存活目标按剩余时间由绿渐变为红；爆裂目标以中心为基准放大到 1.5 倍并淡出。
func appearanceOf(pos *components.PositionComponent, target *components.TargetComponent, lifetime *components.LifetimeComponent) targetAppearance {
	if target.State == components.TargetBursting {
		p := target.BurstProgress()
		scale := utils.Lerp(1, burstMaxScale, utils.EaseOutQuad(p))
		size := target.Size * scale
		offset := (size - target.Size) / 2
		c := burstColor
		c.A = uint8(float64(0xff) * (1 - p))
		return targetAppearance{
			X:     pos.X - offset,
			Y:     pos.Y - offset,
			Size:  size,
			Color: premultiply(c),
		}
	}

	remaining := lifetime.RemainingFraction()
	return targetAppearance{
		X:     pos.X,
		Y:     pos.Y,
		Size:  target.Size,
		Color: mixColor(expiringColor, freshColor, remaining),
		Bar:   remaining,
	}
}

// mixColor 在 a、b 之间线性插值，t=0 返回 a，t=1 返回 b
func mixColor(a, b color.RGBA, t float64) color.RGBA {
	t = utils.Clamp01(t)
	lerp := func(x, y uint8) uint8 {
		return uint8(utils.Lerp(float64(x), float64(y), t) + 0.5)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// premultiply color.RGBA 要求预乘 alpha
func premultiply(c color.RGBA) color.RGBA {
	f := float64(c.A) / 0xff
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// RenderSystem 绘制所有目标方块
type RenderSystem struct {
	entityManager *ecs.EntityManager
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(em *ecs.EntityManager) *RenderSystem {
	return &RenderSystem{entityManager: em}
}

// Draw 按生成顺序绘制目标，后生成的在上层
func (s *RenderSystem) Draw(screen *ebiten.Image) {
	for _, a := range s.appearances() {
		vector.DrawFilledRect(screen, float32(a.X), float32(a.Y), float32(a.Size), float32(a.Size), a.Color, true)
		if a.Bar > 0 {
			vector.DrawFilledRect(screen,
				float32(a.X), float32(a.Y+a.Size-lifetimeBarHeight),
				float32(a.Size*a.Bar), lifetimeBarHeight, barColor, true)
		}
	}
}

// appearances 收集所有目标的绘制参数，按目标序号排序
func (s *RenderSystem) appearances() []targetAppearance {
	entities := ecs.GetEntitiesWith3[
		*components.PositionComponent,
		*components.TargetComponent,
		*components.LifetimeComponent,
	](s.entityManager)

	type ordered struct {
		id int
		a  targetAppearance
	}
	list := make([]ordered, 0, len(entities))
	for _, id := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		target, _ := ecs.GetComponent[*components.TargetComponent](s.entityManager, id)
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		list = append(list, ordered{id: target.ID, a: appearanceOf(pos, target, lifetime)})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })

	result := make([]targetAppearance, len(list))
	for i, o := range list {
		result[i] = o.a
	}
	return result
}
