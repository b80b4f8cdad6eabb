package detector

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// MaxQueueSize 异常事件队列上限（超出后静默淘汰最旧的）
const MaxQueueSize = 5

// 相邻读数变化量阈值
const (
	stressDeltaThreshold = 20
	gsrDeltaThreshold    = 30
)

// Notifier 异常通知接口（尽力而为，失败不影响事件状态）
type Notifier interface {
	Notify(events []models.AnomalyEvent) error
}

// previousValues 上一次读数快照（仅 Evaluate 写入）
type previousValues struct {
	heartRate   int
	stressLevel int
	gsrValue    float64
}

// Detector 异常检测器（每个监测会话一个实例）
// 持有上一次读数的心率/压力/GSR快照，按固定顺序评估规则，
// 新事件插入队列头部并截断到最近5条
type Detector struct {
	mu          sync.Mutex
	prev        previousValues
	initialized bool
	queue       []models.AnomalyEvent
	notifier    Notifier
	logger      *zap.Logger
}

// New 创建异常检测器
func New(notifier Notifier, logger *zap.Logger) *Detector {
	return &Detector{
		notifier: notifier,
		logger:   logger,
	}
}

// Evaluate 评估一次新读数，返回本次触发的事件列表
// 规则按固定顺序独立评估，全部触发的事件合并为一批；
// 评估结束后无论是否触发都更新上一次快照
func (d *Detector) Evaluate(r *models.Reading) []models.AnomalyEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	// 第一条读数只建立基线，变化量规则此时不可能触发
	if !d.initialized {
		d.prev = previousValues{
			heartRate:   r.HeartRate,
			stressLevel: r.StressLevel,
			gsrValue:    r.GSRValue,
		}
		d.initialized = true
	}

	now := time.Now()
	var fired []models.AnomalyEvent

	// 1. 心率过高
	if r.HeartRate > 100 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeWarning,
			Title:     "High Heart Rate",
			Message:   fmt.Sprintf("Heart rate is elevated at %d BPM. Consider resting.", r.HeartRate),
			Timestamp: now,
		})
	}

	// 2. 心率过低（恰好为0表示无信号，不触发）
	if r.HeartRate < 50 && r.HeartRate > 0 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeWarning,
			Title:     "Low Heart Rate",
			Message:   fmt.Sprintf("Heart rate is below normal at %d BPM.", r.HeartRate),
			Timestamp: now,
		})
	}

	// 3. 血氧（critical 优先，两档互斥）
	if r.SpO2 < 90 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeCritical,
			Title:     "Critical SpO2 Level",
			Message:   fmt.Sprintf("Blood oxygen is critically low at %d%%. Seek immediate attention.", r.SpO2),
			Timestamp: now,
		})
	} else if r.SpO2 < 95 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeWarning,
			Title:     "Low SpO2 Level",
			Message:   fmt.Sprintf("Blood oxygen is below optimal at %d%%. Practice deep breathing.", r.SpO2),
			Timestamp: now,
		})
	}

	// 4. 体温（critical 优先，两档互斥）
	if r.Temperature > 38.5 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeCritical,
			Title:     "High Temperature",
			Message:   fmt.Sprintf("Body temperature is elevated at %.1f°C. Monitor closely.", r.Temperature),
			Timestamp: now,
		})
	} else if r.Temperature < 35.5 || r.Temperature > 37.5 {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeWarning,
			Title:     "Temperature Variation",
			Message:   fmt.Sprintf("Body temperature is %.1f°C, outside normal range.", r.Temperature),
			Timestamp: now,
		})
	}

	// 5. 压力突变
	stressDelta := r.StressLevel - d.prev.stressLevel
	if abs(stressDelta) > stressDeltaThreshold {
		direction := "decrease"
		if stressDelta > 0 {
			direction = "increase"
		}
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeWarning,
			Title:     "Stress Event Detected",
			Message:   fmt.Sprintf("Sudden %s in stress levels detected.", direction),
			Timestamp: now,
		})
	}

	// 6. GSR突变
	gsrDelta := r.GSRValue - d.prev.gsrValue
	if gsrDelta < 0 {
		gsrDelta = -gsrDelta
	}
	if gsrDelta > gsrDeltaThreshold {
		fired = append(fired, models.AnomalyEvent{
			ID:        uuid.New().String(),
			Type:      models.AlertTypeInfo,
			Title:     "GSR Spike Detected",
			Message:   "Sudden change in galvanic skin response. Possible emotional response.",
			Timestamp: now,
		})
	}

	// 更新快照（无论是否触发）
	d.prev = previousValues{
		heartRate:   r.HeartRate,
		stressLevel: r.StressLevel,
		gsrValue:    r.GSRValue,
	}

	if len(fired) > 0 {
		d.queue = append(append([]models.AnomalyEvent{}, fired...), d.queue...)
		if len(d.queue) > MaxQueueSize {
			d.queue = d.queue[:MaxQueueSize]
		}

		if d.notifier != nil && hasAudible(fired) {
			// 通知失败只记录，绝不影响事件状态
			go func(batch []models.AnomalyEvent) {
				if err := d.notifier.Notify(batch); err != nil {
					d.logger.Debug("Anomaly notification failed",
						zap.Int("event_count", len(batch)),
						zap.Error(err),
					)
				}
			}(fired)
		}
	}

	return fired
}

// Events 当前异常事件队列（最新在前）
func (d *Detector) Events() []models.AnomalyEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.AnomalyEvent, len(d.queue))
	copy(out, d.queue)
	return out
}

// Dismiss 按 id 移除单个事件，id 不存在时为空操作
func (d *Detector) Dismiss(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, ev := range d.queue {
		if ev.ID == id {
			d.queue = append(d.queue[:i], d.queue[i+1:]...)
			return
		}
	}
}

// hasAudible 本批事件是否需要触发提示音（critical 或 warning）
func hasAudible(events []models.AnomalyEvent) bool {
	for _, ev := range events {
		if ev.Type == models.AlertTypeCritical || ev.Type == models.AlertTypeWarning {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
