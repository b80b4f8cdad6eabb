package insight

import (
	"fmt"

	"vitalwatch/internal/models"
)

// Insight 极性标签（仅用于展示样式）
const (
	PolarityPositive = "positive"
	PolarityNeutral  = "neutral"
	PolarityWarning  = "warning"
)

// MaxInsights 单次输出的洞察条数上限
const MaxInsights = 4

// Insight 一条健康洞察
type Insight struct {
	Polarity string `json:"polarity"`
	Message  string `json:"message"`
}

// PreviousVitals 上一次读数的对比基准（缺失时跳过变化量规则）
type PreviousVitals struct {
	HeartRate   int
	StressLevel int
}

// GenerateInsights 生成健康洞察（最多4条，规则顺序固定）
// 绝对值规则覆盖心率/血氧/压力区间，prev 非空时追加变化量规则
func GenerateInsights(r *models.Reading, prev *PreviousVitals) []Insight {
	if r == nil {
		return nil
	}

	var insights []Insight

	// 心率区间
	if r.HeartRate >= 60 && r.HeartRate <= 80 {
		insights = append(insights, Insight{
			Polarity: PolarityPositive,
			Message:  "Your heart rate is optimal and within the healthy resting range.",
		})
	} else if r.HeartRate > 80 && r.HeartRate <= 100 {
		insights = append(insights, Insight{
			Polarity: PolarityNeutral,
			Message:  "Heart rate is slightly elevated. Consider taking a moment to relax.",
		})
	} else if r.HeartRate > 100 {
		insights = append(insights, Insight{
			Polarity: PolarityWarning,
			Message:  "Heart rate is elevated. Deep breathing exercises recommended.",
		})
	}

	// 变化量规则（有历史数据时）
	if prev != nil {
		hrChange := r.HeartRate - prev.HeartRate
		if abs(hrChange) > 10 {
			polarity := PolarityPositive
			direction := "decreased"
			if hrChange > 0 {
				polarity = PolarityWarning
				direction = "increased"
			}
			insights = append(insights, Insight{
				Polarity: polarity,
				Message:  fmt.Sprintf("Heart rate %s by %d BPM in the last minute.", direction, abs(hrChange)),
			})
		}

		stressChange := r.StressLevel - prev.StressLevel
		if abs(stressChange) > 15 {
			if stressChange > 0 {
				insights = append(insights, Insight{
					Polarity: PolarityWarning,
					Message:  "Stress levels rising. Consider a break.",
				})
			} else {
				insights = append(insights, Insight{
					Polarity: PolarityPositive,
					Message:  "Stress levels declining. Great progress!",
				})
			}
		}
	}

	// 血氧区间
	if r.SpO2 >= 95 && r.SpO2 <= 100 {
		insights = append(insights, Insight{
			Polarity: PolarityPositive,
			Message:  "Excellent blood oxygen saturation. Respiratory function is optimal.",
		})
	} else if r.SpO2 >= 90 && r.SpO2 < 95 {
		insights = append(insights, Insight{
			Polarity: PolarityNeutral,
			Message:  "Blood oxygen slightly below optimal. Ensure proper breathing.",
		})
	}

	// 压力区间
	if r.StressLevel <= 30 {
		insights = append(insights, Insight{
			Polarity: PolarityPositive,
			Message:  "Low stress levels detected. You are in a calm state.",
		})
	} else if r.StressLevel > 30 && r.StressLevel <= 60 {
		insights = append(insights, Insight{
			Polarity: PolarityNeutral,
			Message:  "Moderate stress detected. Mindfulness techniques may help.",
		})
	} else {
		insights = append(insights, Insight{
			Polarity: PolarityWarning,
			Message:  "High stress levels. Consider taking a break or practicing relaxation.",
		})
	}

	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
