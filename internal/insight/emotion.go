package insight

// Emotion 情绪分类结果
type Emotion struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// emotionRule 情绪规则（谓词 + 结果）
type emotionRule struct {
	match  func(heartRate, stressLevel int) bool
	result Emotion
}

// 规则按声明顺序评估，首个命中的生效。
// 区间存在重叠，顺序即优先级，不能重排
var emotionRules = []emotionRule{
	{
		match: func(hr, stress int) bool { return stress < 30 && hr >= 60 && hr <= 80 },
		result: Emotion{
			Label:       "Calm",
			Description: "You are in a relaxed and peaceful state",
		},
	},
	{
		match: func(hr, stress int) bool { return stress > 60 || hr > 100 },
		result: Emotion{
			Label:       "Stressed",
			Description: "Elevated stress indicators detected",
		},
	},
	{
		match: func(hr, stress int) bool { return hr > 80 && hr <= 100 && stress < 60 },
		result: Emotion{
			Label:       "Excited",
			Description: "Elevated heart rate with low stress",
		},
	},
	{
		match: func(hr, stress int) bool { return stress >= 30 && stress <= 50 },
		result: Emotion{
			Label:       "Focused",
			Description: "Moderate alertness, good for productivity",
		},
	},
}

// ClassifyEmotion 根据心率和压力指数分类情绪（纯函数，首个命中规则生效）
func ClassifyEmotion(heartRate, stressLevel int) Emotion {
	for _, rule := range emotionRules {
		if rule.match(heartRate, stressLevel) {
			return rule.result
		}
	}
	return Emotion{
		Label:       "Neutral",
		Description: "Balanced emotional state",
	}
}
