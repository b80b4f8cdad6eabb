package vitals

// Status 单指标状态
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// 指标名称（与 Reading 字段对应）
const (
	MetricHeartRate   = "heart_rate"
	MetricSpO2        = "spo2"
	MetricTemperature = "temperature"
	MetricStressLevel = "stress_level"
)

// Classify 阈值分类（纯函数，指标之间相互独立）
// 区间规则：
//
//	heart_rate:   warning <60 或 >100，critical <50 或 >110
//	spo2:         warning <95，critical <90
//	temperature:  warning <36 或 >37.5，critical <35 或 >38.5
//	stress_level: warning >50，critical >70
//
// 未知指标返回 normal
func Classify(metric string, value float64) Status {
	switch metric {
	case MetricHeartRate:
		if value < 50 || value > 110 {
			return StatusCritical
		}
		if value < 60 || value > 100 {
			return StatusWarning
		}
	case MetricSpO2:
		if value < 90 {
			return StatusCritical
		}
		if value < 95 {
			return StatusWarning
		}
	case MetricTemperature:
		if value < 35 || value > 38.5 {
			return StatusCritical
		}
		if value < 36 || value > 37.5 {
			return StatusWarning
		}
	case MetricStressLevel:
		if value > 70 {
			return StatusCritical
		}
		if value > 50 {
			return StatusWarning
		}
	}
	return StatusNormal
}
