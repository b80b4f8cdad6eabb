package models

import (
	"time"
)

// 报警级别（持久化报警和瞬态异常事件共用）
const (
	AlertTypeCritical = "critical"
	AlertTypeWarning  = "warning"
	AlertTypeInfo     = "info"
)

// Alert 持久化报警（对应 health_alerts 表）
// acknowledged=true 后从活跃集合移除，确认是终态操作，不可撤销
type Alert struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	AlertType    string    `json:"alert_type" db:"alert_type"` // critical, warning, info
	Sensor       string    `json:"sensor" db:"sensor"`         // 触发报警的指标名称
	Message      string    `json:"message" db:"message"`
	Value        float64   `json:"value" db:"value"` // 触发时的数值
	Acknowledged bool      `json:"acknowledged" db:"acknowledged"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AnomalyEvent 瞬态异常事件（仅内存，不持久化）
// 由相邻两次读数对比产生，队列最多保留最近5条
type AnomalyEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // critical, warning, info
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
