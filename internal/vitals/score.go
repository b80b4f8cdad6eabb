package vitals

import (
	"vitalwatch/internal/models"
)

// DefaultScore 无读数时的占位评分
// 调用方必须区分"无数据"和"计算结果恰好为75"两种情况
const DefaultScore = 75

// Score 健康评分（0-100）
// 从100起算，每个指标进入 warning/critical 区间时扣减固定分值，
// 各指标独立累加，critical 扣分叠加在 warning 之上，最后夹紧到 [0,100]
func Score(r *models.Reading) int {
	if r == nil {
		return DefaultScore
	}

	score := 100

	if r.HeartRate < 60 || r.HeartRate > 100 {
		score -= 10
	}
	if r.HeartRate < 50 || r.HeartRate > 110 {
		score -= 15
	}

	if r.SpO2 < 95 {
		score -= 10
	}
	if r.SpO2 < 90 {
		score -= 20
	}

	if r.Temperature < 36 || r.Temperature > 37.5 {
		score -= 10
	}
	if r.Temperature < 35 || r.Temperature > 38.5 {
		score -= 20
	}

	if r.StressLevel > 50 {
		score -= 10
	}
	if r.StressLevel > 70 {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// ScoreLabel 评分档位文案
func ScoreLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Attention"
	}
}
