package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vitalwatch/internal/models"
)

// 空读数列表返回定义好的零值结果，不报错
func TestComputeAverages_Empty(t *testing.T) {
	avg := ComputeAverages(nil)
	assert.Equal(t, 0, avg.HeartRate)
	assert.Equal(t, 0, avg.SpO2)
	assert.Equal(t, "0.0", avg.Temperature)
	assert.Equal(t, 0, avg.StressLevel)
}

func TestComputeAverages(t *testing.T) {
	readings := []models.Reading{
		{HeartRate: 70, SpO2: 98, Temperature: 36.5, StressLevel: 30},
		{HeartRate: 75, SpO2: 96, Temperature: 36.7, StressLevel: 40},
	}

	avg := ComputeAverages(readings)
	assert.Equal(t, 73, avg.HeartRate) // 72.5 四舍五入
	assert.Equal(t, 97, avg.SpO2)
	assert.Equal(t, "36.6", avg.Temperature)
	assert.Equal(t, 35, avg.StressLevel)
}

// 均值只取最近24条
func TestComputeAverages_WindowCap(t *testing.T) {
	var readings []models.Reading
	for i := 0; i < 24; i++ {
		readings = append(readings, models.Reading{HeartRate: 60, SpO2: 98, Temperature: 36.5, StressLevel: 30})
	}
	// 窗口之外的极端值不应影响结果
	readings = append(readings, models.Reading{HeartRate: 200, SpO2: 50, Temperature: 41, StressLevel: 100})

	avg := ComputeAverages(readings)
	assert.Equal(t, 60, avg.HeartRate)
	assert.Equal(t, 98, avg.SpO2)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "00:59:59", FormatDuration(3599))
	// 超过100小时不截断
	assert.Equal(t, "120:00:30", FormatDuration(120*3600+30))
	assert.Equal(t, "00:00:00", FormatDuration(-5))
}

func TestSummarize(t *testing.T) {
	readings := []models.Reading{
		{HeartRate: 70, SpO2: 98, Temperature: 36.5, StressLevel: 30},
	}

	s := Summarize(readings, 95, 125)
	assert.Equal(t, 95, s.HealthScore)
	assert.Equal(t, "00:02:05", s.Duration)
	assert.Equal(t, 1, s.ReadingCount)
	assert.Equal(t, 70, s.Averages.HeartRate)
}
