package session

import (
	"fmt"

	"vitalwatch/internal/models"
)

// averageWindow 均值计算窗口（最近N条读数）
const averageWindow = 24

// Averages 会话均值（按各指标的展示约定取整）
type Averages struct {
	HeartRate   int    `json:"avg_heart_rate"`
	SpO2        int    `json:"avg_spo2"`
	Temperature string `json:"avg_temperature"` // 一位小数
	StressLevel int    `json:"avg_stress_level"`
}

// Summary 一次已结束监测会话的汇总
type Summary struct {
	Averages     Averages `json:"averages"`
	HealthScore  int      `json:"health_score"`
	Duration     string   `json:"duration"` // HH:MM:SS
	ReadingCount int      `json:"reading_count"`
}

// ComputeAverages 计算最近24条读数的算术均值
// 空输入返回零值结果，不返回错误
func ComputeAverages(readings []models.Reading) Averages {
	if len(readings) == 0 {
		return Averages{Temperature: "0.0"}
	}

	window := readings
	if len(window) > averageWindow {
		window = window[:averageWindow]
	}

	var sumHR, sumSpO2, sumStress int
	var sumTemp float64
	for _, r := range window {
		sumHR += r.HeartRate
		sumSpO2 += r.SpO2
		sumTemp += r.Temperature
		sumStress += r.StressLevel
	}

	n := len(window)
	return Averages{
		HeartRate:   roundDiv(sumHR, n),
		SpO2:        roundDiv(sumSpO2, n),
		Temperature: fmt.Sprintf("%.1f", sumTemp/float64(n)),
		StressLevel: roundDiv(sumStress, n),
	}
}

// FormatDuration 将秒数格式化为 HH:MM:SS（补零，小时数不截断）
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// Summarize 汇总一次已结束的会话
func Summarize(readings []models.Reading, healthScore, durationSeconds int) Summary {
	return Summary{
		Averages:     ComputeAverages(readings),
		HealthScore:  healthScore,
		Duration:     FormatDuration(durationSeconds),
		ReadingCount: len(readings),
	}
}

// roundDiv 四舍五入的整数除法
func roundDiv(sum, n int) int {
	return int(float64(sum)/float64(n) + 0.5)
}
