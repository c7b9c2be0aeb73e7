package systems

import (
	"log"

	"github.com/decker502/boxpop/pkg/utils"
)

// PointerSource 返回本帧是否发生点击及其位置
type PointerSource func() (bool, int, int)

// InputSystem 将玩家点击路由到目标注册表
type InputSystem struct {
	registry *TargetRegistry
	pointer  PointerSource
	enabled  bool // 仅在会话 Active 时接受点击
}

// NewInputSystem 创建输入系统
// pointer 为 nil 时使用鼠标/触摸输入
func NewInputSystem(registry *TargetRegistry, pointer PointerSource) *InputSystem {
	if pointer == nil {
		pointer = utils.IsJustTouchedOrClicked
	}
	return &InputSystem{
		registry: registry,
		pointer:  pointer,
	}
}

// SetEnabled 设置是否接受点击
func (s *InputSystem) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Update 处理本帧点击
// 返回：被点爆的目标序号，未命中时为 0
func (s *InputSystem) Update(deltaTime float64) int {
	if !s.enabled {
		return 0
	}
	clicked, x, y := s.pointer()
	if !clicked {
		return 0
	}
	return s.HandleClick(float64(x), float64(y))
}

// HandleClick 对点 (x, y) 做命中测试并触发爆裂
func (s *InputSystem) HandleClick(x, y float64) int {
	id, ok := s.registry.TargetAt(x, y)
	if !ok {
		return 0
	}
	if !s.registry.Burst(id) {
		return 0
	}
	log.Printf("[InputSystem] Click (%.0f, %.0f) hit target %d", x, y, id)
	return id
}
