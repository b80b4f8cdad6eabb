package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReadingsIngestedTotal 已接收的读数总数
	ReadingsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalwatch_readings_ingested_total",
			Help: "Total number of vital sign readings ingested",
		},
	)

	// AnomaliesDetectedTotal 按级别统计的异常事件总数
	AnomaliesDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitalwatch_anomalies_detected_total",
			Help: "Total number of anomaly events detected, by severity",
		},
		[]string{"severity"},
	)

	// AlertsAcknowledgedTotal 已确认的报警总数
	AlertsAcknowledgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vitalwatch_alerts_acknowledged_total",
			Help: "Total number of alerts acknowledged",
		},
	)

	// HealthScore 按用户统计的当前健康评分
	HealthScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vitalwatch_health_score",
			Help: "Current composite health score, by user",
		},
		[]string{"user_id"},
	)
)

func init() {
	prometheus.MustRegister(ReadingsIngestedTotal)
	prometheus.MustRegister(AnomaliesDetectedTotal)
	prometheus.MustRegister(AlertsAcknowledgedTotal)
	prometheus.MustRegister(HealthScore)
}
