package systems

import (
	"testing"
	"time"

	"github.com/decker502/boxpop/pkg/config"
)

func newDefaultCurve() *DelayCurve {
	return NewDelayCurveFromConfig(config.DefaultGameConfig())
}

func TestLifetimeKeyValues(t *testing.T) {
	curve := newDefaultCurve()

	tests := []struct {
		index int
		want  time.Duration
	}{
		{1, 7000 * time.Millisecond},
		{10, 4500 * time.Millisecond},
		{11, 5000 * time.Millisecond},
		{25, 2500 * time.Millisecond},
		{26, 2500 * time.Millisecond},
		{50, 2500 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := curve.Lifetime(tt.index); got != tt.want {
			t.Errorf("Lifetime(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestNextSpawnDelayKeyValues(t *testing.T) {
	curve := newDefaultCurve()

	if got := curve.NextSpawnDelay(1); got != 2*time.Second {
		t.Errorf("NextSpawnDelay(1) = %v, want 2s", got)
	}

	tests := []struct {
		index int
		want  time.Duration
	}{
		{9, 900 * time.Millisecond}, // 第一阶段在最后一个序号落到下限
		{10, time.Second},
		{17, 700 * time.Millisecond},
		{24, 400 * time.Millisecond}, // 第二阶段在最后一个序号落到下限
	}
	for _, tt := range tests {
		if got := curve.NextSpawnDelay(tt.index); got != tt.want {
			t.Errorf("NextSpawnDelay(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}

	for i := 25; i <= 50; i++ {
		if got := curve.NextSpawnDelay(i); got != 400*time.Millisecond {
			t.Errorf("NextSpawnDelay(%d) = %v, want 400ms", i, got)
		}
	}
}

func TestCurvesPositive(t *testing.T) {
	curve := newDefaultCurve()
	for i := 1; i <= 50; i++ {
		if d := curve.NextSpawnDelay(i); d <= 0 {
			t.Errorf("NextSpawnDelay(%d) = %v, want > 0", i, d)
		}
		if l := curve.Lifetime(i); l <= 0 {
			t.Errorf("Lifetime(%d) = %v, want > 0", i, l)
		}
	}
}

// TestCurvesMonotonicWithinPhases 验证阶段内单调不增，最终阶段恒定
func TestCurvesMonotonicWithinPhases(t *testing.T) {
	curve := newDefaultCurve()

	checkRange := func(name string, f func(int) time.Duration, from, to int) {
		t.Helper()
		for i := from + 1; i <= to; i++ {
			if f(i) > f(i-1) {
				t.Errorf("%s increases within phase: f(%d)=%v > f(%d)=%v", name, i, f(i), i-1, f(i-1))
			}
		}
	}
	checkConstant := func(name string, f func(int) time.Duration, from, to int) {
		t.Helper()
		for i := from + 1; i <= to; i++ {
			if f(i) != f(from) {
				t.Errorf("%s not constant in final phase: f(%d)=%v, f(%d)=%v", name, i, f(i), from, f(from))
			}
		}
	}

	checkRange("NextSpawnDelay", curve.NextSpawnDelay, 1, 9)
	checkRange("NextSpawnDelay", curve.NextSpawnDelay, 10, 24)
	checkConstant("NextSpawnDelay", curve.NextSpawnDelay, 25, 50)

	checkRange("Lifetime", curve.Lifetime, 1, 10)
	checkRange("Lifetime", curve.Lifetime, 11, 25)
	checkConstant("Lifetime", curve.Lifetime, 26, 50)
}

func TestCurveFloorClamp(t *testing.T) {
	// steps 小于阶段长度时，超出部分被下限截断
	curve := NewDelayCurve(
		config.CurveConfig{
			Phases: []config.CurvePhase{{From: 1, To: 10, Start: 1.0, End: 0.5, Steps: 2}},
			Final:  0.5,
		},
		config.CurveConfig{Final: 1.0},
	)

	if got := curve.NextSpawnDelay(3); got != 500*time.Millisecond {
		t.Errorf("NextSpawnDelay(3) = %v, want 500ms", got)
	}
	if got := curve.NextSpawnDelay(10); got != 500*time.Millisecond {
		t.Errorf("NextSpawnDelay(10) = %v, want clamped 500ms", got)
	}
	// 没有阶段时直接使用 Final
	if got := curve.Lifetime(1); got != time.Second {
		t.Errorf("Lifetime(1) = %v, want 1s", got)
	}
}
