package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vitalwatch/internal/models"
)

func healthyReading() *models.Reading {
	return &models.Reading{
		HeartRate:   72,
		SpO2:        98,
		Temperature: 36.6,
		StressLevel: 30,
	}
}

func TestScore_AllNormal(t *testing.T) {
	assert.Equal(t, 100, Score(healthyReading()))
}

func TestScore_NilReading(t *testing.T) {
	assert.Equal(t, DefaultScore, Score(nil))
}

func TestScore_WarningPenalties(t *testing.T) {
	r := healthyReading()
	r.HeartRate = 105 // warning -10
	assert.Equal(t, 90, Score(r))

	r.SpO2 = 93 // 再扣 -10
	assert.Equal(t, 80, Score(r))
}

func TestScore_CriticalPenaltiesAdditive(t *testing.T) {
	r := healthyReading()
	r.HeartRate = 120 // warning -10 + critical -15
	assert.Equal(t, 75, Score(r))

	r2 := healthyReading()
	r2.SpO2 = 85 // warning -10 + critical -20
	assert.Equal(t, 70, Score(r2))
}

// 单指标偏离正常区间越远，评分单调不增
func TestScore_MonotonicPerMetric(t *testing.T) {
	r := healthyReading()
	normal := Score(r)

	r.Temperature = 38.0 // warning
	warning := Score(r)

	r.Temperature = 39.5 // critical
	critical := Score(r)

	assert.GreaterOrEqual(t, normal, warning)
	assert.GreaterOrEqual(t, warning, critical)
}

// 极端输入必须夹紧到 [0,100]，不允许下溢
func TestScore_ClampExtremes(t *testing.T) {
	r := &models.Reading{
		HeartRate:   300,
		SpO2:        0,
		Temperature: 100,
		StressLevel: 1000,
	}
	score := Score(r)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
	assert.Equal(t, 0, score)
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Excellent", ScoreLabel(85))
	assert.Equal(t, "Good", ScoreLabel(60))
	assert.Equal(t, "Fair", ScoreLabel(45))
	assert.Equal(t, "Needs Attention", ScoreLabel(30))
}
