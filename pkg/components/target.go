package components

// TargetState 表示目标的生命周期状态
type TargetState int

const (
	TargetAlive    TargetState = iota // 存活，可被点击，持有过期计时器
	TargetBursting                    // 已被点击，正在播放爆裂动画，等待移除
)

// String 返回状态名称（用于日志）
func (s TargetState) String() string {
	switch s {
	case TargetAlive:
		return "Alive"
	case TargetBursting:
		return "Bursting"
	default:
		return "Unknown"
	}
}

// TargetComponent 标记实体为目标方块
type TargetComponent struct {
	ID           int         // 生成序号（1..N）
	State        TargetState // 当前状态
	Size         float64     // 边长（像素）
	BurstElapsed float64     // 爆裂动画已播放时间（秒）
	BurstTime    float64     // 爆裂动画总时长（秒）
}

// BurstProgress 返回爆裂动画进度 [0, 1]
func (t *TargetComponent) BurstProgress() float64 {
	if t.State != TargetBursting || t.BurstTime <= 0 {
		return 0
	}
	p := t.BurstElapsed / t.BurstTime
	if p > 1 {
		return 1
	}
	return p
}
