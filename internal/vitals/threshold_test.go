package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_HeartRate(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  Status
	}{
		{"normal low edge", 60, StatusNormal},
		{"normal high edge", 100, StatusNormal},
		{"warning low", 55, StatusWarning},
		{"warning high", 105, StatusWarning},
		{"critical low", 45, StatusCritical},
		{"critical high", 120, StatusCritical},
		{"warning boundary 59", 59, StatusWarning},
		{"critical boundary 49", 49, StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(MetricHeartRate, tt.value))
		})
	}
}

// 区间 [50,110] 内当且仅当 60 <= hr <= 100 时为 normal
func TestClassify_HeartRate_NormalBand(t *testing.T) {
	for hr := 50; hr <= 110; hr++ {
		got := Classify(MetricHeartRate, float64(hr))
		if hr >= 60 && hr <= 100 {
			assert.Equal(t, StatusNormal, got, "hr=%d", hr)
		} else {
			assert.NotEqual(t, StatusNormal, got, "hr=%d", hr)
		}
	}
}

func TestClassify_SpO2(t *testing.T) {
	assert.Equal(t, StatusNormal, Classify(MetricSpO2, 98))
	assert.Equal(t, StatusNormal, Classify(MetricSpO2, 95))
	assert.Equal(t, StatusWarning, Classify(MetricSpO2, 93))
	assert.Equal(t, StatusCritical, Classify(MetricSpO2, 89))
	assert.Equal(t, StatusCritical, Classify(MetricSpO2, 0))
}

func TestClassify_Temperature(t *testing.T) {
	assert.Equal(t, StatusNormal, Classify(MetricTemperature, 36.6))
	assert.Equal(t, StatusNormal, Classify(MetricTemperature, 37.5))
	assert.Equal(t, StatusWarning, Classify(MetricTemperature, 35.8))
	assert.Equal(t, StatusWarning, Classify(MetricTemperature, 38.0))
	assert.Equal(t, StatusCritical, Classify(MetricTemperature, 34.5))
	assert.Equal(t, StatusCritical, Classify(MetricTemperature, 39.0))
}

func TestClassify_StressLevel(t *testing.T) {
	assert.Equal(t, StatusNormal, Classify(MetricStressLevel, 30))
	assert.Equal(t, StatusNormal, Classify(MetricStressLevel, 50))
	assert.Equal(t, StatusWarning, Classify(MetricStressLevel, 60))
	assert.Equal(t, StatusCritical, Classify(MetricStressLevel, 80))
}

func TestClassify_UnknownMetric(t *testing.T) {
	assert.Equal(t, StatusNormal, Classify("unknown", 9999))
}
