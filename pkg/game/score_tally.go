package game

// ScoreTally 本局成功点击计数
// 会话内单调不减，仅在重开时清零
type ScoreTally struct {
	clicked int
}

// NewScoreTally 创建计分器
func NewScoreTally() *ScoreTally {
	return &ScoreTally{}
}

// Add 记录一次成功点击
func (s *ScoreTally) Add() {
	s.clicked++
}

// Count 返回成功点击次数
func (s *ScoreTally) Count() int {
	return s.clicked
}

// Reset 清零（仅由 Session.Restart 调用）
func (s *ScoreTally) Reset() {
	s.clicked = 0
}

// SuccessRate 返回成功率百分比 (0-100)
func (s *ScoreTally) SuccessRate(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(s.clicked) / float64(total) * 100
}
