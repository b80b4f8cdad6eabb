package insight

import (
	"vitalwatch/internal/models"
)

// MaxRecommendations 单次输出的建议条数上限
const MaxRecommendations = 3

// fallbackRecommendation 所有规则都未命中时的保底建议
const fallbackRecommendation = "All vitals normal! Consider maintaining activity with regular movement"

// wellnessRule 健康建议规则（按声明顺序独立评估，不互斥）
type wellnessRule struct {
	match func(r *models.Reading) bool
	text  string
}

var wellnessRules = []wellnessRule{
	{
		match: func(r *models.Reading) bool { return r.StressLevel > 50 },
		text:  "Try 4-7-8 breathing: Inhale for 4s, hold for 7s, exhale for 8s",
	},
	{
		match: func(r *models.Reading) bool { return r.HeartRate > 90 },
		text:  "Your heart rate is elevated. Consider taking a 5-minute meditation break",
	},
	{
		match: func(r *models.Reading) bool { return r.SpO2 < 95 },
		text:  "Practice deep breathing exercises to improve oxygen saturation",
	},
	{
		match: func(r *models.Reading) bool { return r.Temperature > 37.5 },
		text:  "Stay hydrated! Drink a glass of water to help regulate body temperature",
	},
	{
		match: func(r *models.Reading) bool { return r.StressLevel < 30 && r.HeartRate < 80 },
		text:  "Your vitals are great! This is a good time for light exercise or stretching",
	},
	{
		match: func(r *models.Reading) bool { return r.HeartRate < 60 },
		text:  "Low heart rate detected. Consider having a warm beverage if feeling sluggish",
	},
}

// Recommendations 生成健康建议（最多3条，无规则命中时返回保底建议）
func Recommendations(r *models.Reading) []string {
	if r == nil {
		return []string{fallbackRecommendation}
	}

	var out []string
	for _, rule := range wellnessRules {
		if rule.match(r) {
			out = append(out, rule.text)
		}
	}

	if len(out) == 0 {
		out = append(out, fallbackRecommendation)
	}
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}
