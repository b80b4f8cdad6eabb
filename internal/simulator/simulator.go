package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"vitalwatch/internal/models"
)

// 各指标的模拟基线
const (
	baselineHeartRate   = 72
	baselineSpO2        = 98
	baselineTemperature = 36.6
	baselineStressLevel = 30
)

// AlertProbability 每次采样附带随机报警的概率
const AlertProbability = 0.05

// Simulator 读数模拟器
// 基线状态显式持有在实例上（而不是包级变量），便于测试和会话间重置
type Simulator struct {
	rng *rand.Rand

	heartRate   float64
	spo2        float64
	temperature float64
	stressLevel float64
}

// New 创建模拟器（基线初始化为默认值）
func New(seed int64) *Simulator {
	s := &Simulator{
		rng: rand.New(rand.NewSource(seed)),
	}
	s.Reset()
	return s
}

// Reset 恢复基线（新会话开始时调用）
func (s *Simulator) Reset() {
	s.heartRate = baselineHeartRate
	s.spo2 = baselineSpO2
	s.temperature = baselineTemperature
	s.stressLevel = baselineStressLevel
}

// Next 生成下一条读数（各指标在约束范围内随机游走）
func (s *Simulator) Next(userID string) models.Reading {
	s.heartRate = s.walk(s.heartRate, 5, 55, 110)
	s.spo2 = s.walk(s.spo2, 2, 92, 100)
	s.temperature = s.walk(s.temperature, 0.2, 35.5, 38.0)
	s.stressLevel = s.walk(s.stressLevel, 8, 10, 85)

	now := time.Now()

	// ECG：正弦基波加抖动
	ecgBase := math.Sin(float64(now.UnixMilli())/100) * 50
	ecgValue := ecgBase + (s.rng.Float64()-0.5)*20

	// GSR 随压力水平变化
	gsrBase := s.stressLevel * 2
	gsrValue := gsrBase + (s.rng.Float64()-0.5)*10

	return models.Reading{
		ID:          uuid.New().String(),
		UserID:      userID,
		HeartRate:   int(math.Round(s.heartRate)),
		SpO2:        int(math.Round(s.spo2)),
		Temperature: round1(s.temperature),
		StressLevel: int(math.Round(s.stressLevel)),
		GSRValue:    round2(gsrValue),
		ECGValue:    round2(ecgValue),
		Timestamp:   now,
	}
}

// MaybeAlert 以固定概率基于当前读数产生一条随机报警
// 这条报警路径独立于异常检测器，模拟外部生产端的直接阈值告警
func (s *Simulator) MaybeAlert(r models.Reading) *models.Alert {
	if s.rng.Float64() >= AlertProbability {
		return nil
	}

	candidates := []models.Alert{
		{
			ID:        uuid.New().String(),
			UserID:    r.UserID,
			AlertType: models.AlertTypeWarning,
			Sensor:    "heart_rate",
			Message:   "Heart rate slightly elevated. Consider taking a short break.",
			Value:     float64(r.HeartRate),
			CreatedAt: time.Now(),
		},
		{
			ID:        uuid.New().String(),
			UserID:    r.UserID,
			AlertType: models.AlertTypeInfo,
			Sensor:    "stress",
			Message:   "Stress levels detected. Deep breathing recommended.",
			Value:     float64(r.StressLevel),
			CreatedAt: time.Now(),
		},
	}

	alert := candidates[s.rng.Intn(len(candidates))]
	return &alert
}

// Historical 回填 count 条历史读数（时间戳按每分钟一条倒推）
func (s *Simulator) Historical(userID string, count int) []models.Reading {
	now := time.Now()
	readings := make([]models.Reading, 0, count)
	for i := count - 1; i >= 0; i-- {
		r := s.Next(userID)
		r.Timestamp = now.Add(-time.Duration(i) * time.Minute)
		readings = append(readings, r)
	}
	return readings
}

// walk 有界随机游走一步
func (s *Simulator) walk(base, variance, min, max float64) float64 {
	change := (s.rng.Float64() - 0.5) * variance
	v := base + change
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
