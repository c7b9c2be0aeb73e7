package components

// LifetimeComponent 记录目标的存活进度
// 仅用于显示剩余时间；目标的移除由 TargetRegistry 的过期计时器负责
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)
	CurrentLifetime float64 // 当前已存在时间(秒)
}

// RemainingFraction 返回剩余生命比例 [0, 1]
func (l *LifetimeComponent) RemainingFraction() float64 {
	if l.MaxLifetime <= 0 {
		return 0
	}
	r := 1 - l.CurrentLifetime/l.MaxLifetime
	if r < 0 {
		return 0
	}
	return r
}
