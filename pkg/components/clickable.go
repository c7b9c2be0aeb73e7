package components

// ClickableComponent 标记实体可以被鼠标点击
// 定义了可点击区域的尺寸和是否启用点击
type ClickableComponent struct {
	Width     float64 // 可点击区域的宽度(像素)
	Height    float64 // 可点击区域的高度(像素)
	IsEnabled bool    // 是否可以被点击(已爆裂的目标禁用点击)
}

// Contains 检查点 (px, py) 是否落在以 (x, y) 为左上角的可点击区域内
func (c *ClickableComponent) Contains(x, y, px, py float64) bool {
	return px >= x && px < x+c.Width && py >= y && py < y+c.Height
}
