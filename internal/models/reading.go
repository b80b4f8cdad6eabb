package models

import (
	"time"
)

// Reading 一次多传感器采样（对应 health_readings 表）
// 数值字段不做物理合理性校验，越界值由分类器分类，不在入口拒绝
type Reading struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	HeartRate   int       `json:"heart_rate" db:"heart_rate"`     // 心率（次/分）
	SpO2        int       `json:"spo2" db:"spo2"`                 // 血氧饱和度（%，0-100）
	Temperature float64   `json:"temperature" db:"temperature"`   // 体温（℃）
	StressLevel int       `json:"stress_level" db:"stress_level"` // 压力指数（0-100，由GSR推导）
	GSRValue    float64   `json:"gsr_value" db:"gsr_value"`       // 皮肤电反应原始值
	ECGValue    float64   `json:"ecg_value" db:"ecg_value"`       // ECG瞬时幅值
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UserProfile 用户档案（基线参考值，会话期间只读）
type UserProfile struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Age          int       `json:"age" db:"age"`
	BaselineHR   int       `json:"baseline_hr" db:"baseline_hr"`
	BaselineSpO2 int       `json:"baseline_spo2" db:"baseline_spo2"`
	BaselineTemp float64   `json:"baseline_temp" db:"baseline_temp"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
