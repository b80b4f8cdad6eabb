package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"vitalwatch/internal/alerts"
	"vitalwatch/internal/config"
	"vitalwatch/internal/detector"
	"vitalwatch/internal/insight"
	"vitalwatch/internal/metrics"
	"vitalwatch/internal/models"
	"vitalwatch/internal/session"
	"vitalwatch/internal/vitals"
)

// 电池模拟参数
const (
	initialBatteryLevel = 85.0
	minBatteryLevel     = 20.0
	batteryDrainPerTick = 0.01
)

// ReadingSource 读数来源（缓存窗口，可能落空）
type ReadingSource interface {
	GetRecentReadings(ctx context.Context, userID string) ([]models.Reading, error)
}

// ReadingStore 读数持久化查询接口
type ReadingStore interface {
	FetchRecent(ctx context.Context, userID string, limit int) ([]models.Reading, error)
}

// AlertStore 报警查询接口
type AlertStore interface {
	ListUnacknowledged(ctx context.Context, userID string) ([]models.Alert, error)
}

// Snapshot 仪表盘快照（单次读取的一致视图）
type Snapshot struct {
	UserID          string                `json:"user_id"`
	Active          bool                  `json:"active"`
	Reading         *models.Reading       `json:"reading,omitempty"`
	HealthScore     int                   `json:"health_score"`
	ScoreLabel      string                `json:"score_label"`
	Emotion         insight.Emotion       `json:"emotion"`
	Insights        []insight.Insight     `json:"insights"`
	Recommendations []string              `json:"recommendations"`
	Anomalies       []models.AnomalyEvent `json:"anomalies"`
	Alerts          []models.Alert        `json:"alerts"`
	DurationSeconds int                   `json:"duration_seconds"`
	Duration        string                `json:"duration"`
	BatteryLevel    float64               `json:"battery_level"`
}

// sessionState 单次监测会话的内部状态
// epoch 在每次 Start 时递增，迟到的异步完成通过 epoch 对比被丢弃
type sessionState struct {
	epoch        uint64
	userID       string
	active       bool
	startedAt    time.Time
	durationSec  int
	batteryLevel float64
	detector     *detector.Detector
	latest       *models.Reading
	prevVitals   *insight.PreviousVitals
	healthScore  int
	readingCount int
}

// MonitorService 监测会话控制器
// 所有会话状态由互斥锁保护，读数事件严格按到达顺序逐条处理
type MonitorService struct {
	config       *config.Config
	cache        ReadingSource
	readingStore ReadingStore
	alertStore   AlertStore
	alertManager *alerts.Manager
	notifier     detector.Notifier
	logger       *zap.Logger

	mu      sync.Mutex
	session sessionState
	cancel  context.CancelFunc
	ticker  *time.Ticker
	done    chan struct{}

	// 异常事件订阅者（SSE推送）
	subMu       sync.Mutex
	subscribers map[chan models.AnomalyEvent]struct{}
}

// NewMonitorService 创建监测服务
func NewMonitorService(
	cfg *config.Config,
	cache ReadingSource,
	readingStore ReadingStore,
	alertStore AlertStore,
	alertManager *alerts.Manager,
	notifier detector.Notifier,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		config:       cfg,
		cache:        cache,
		readingStore: readingStore,
		alertStore:   alertStore,
		alertManager: alertManager,
		notifier:     notifier,
		logger:       logger,
		subscribers:  make(map[chan models.AnomalyEvent]struct{}),
	}
}

// Start 启动一次监测会话
func (s *MonitorService) Start(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.active {
		return fmt.Errorf("monitoring session already active for user %s", s.session.userID)
	}

	// 1. 加载未确认报警到活跃集合
	existing, err := s.alertStore.ListUnacknowledged(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load unacknowledged alerts",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		// 加载失败不阻止会话启动，活跃集合从空开始
		existing = nil
	}
	s.alertManager.Load(existing)

	// 2. 初始化会话状态（每个会话一个独立的检测器实例）
	s.session = sessionState{
		epoch:        s.session.epoch + 1,
		userID:       userID,
		active:       true,
		startedAt:    time.Now().UTC(),
		batteryLevel: initialBatteryLevel,
		detector:     detector.New(s.notifier, s.logger),
		healthScore:  vitals.DefaultScore,
	}

	// 3. 启动秒级计时器（会话时长 + 电池模拟）
	tickCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.ticker = time.NewTicker(time.Second)
	s.done = make(chan struct{})

	epoch := s.session.epoch
	go s.tickLoop(tickCtx, epoch, s.ticker, s.done)

	s.logger.Info("Monitoring session started",
		zap.String("user_id", userID),
		zap.Uint64("epoch", epoch),
	)
	return nil
}

// Stop 同步停止当前会话
// 返回时计时器已取消，之后到达的事件和迟到的异步完成都会被丢弃
func (s *MonitorService) Stop() {
	s.mu.Lock()
	if !s.session.active {
		s.mu.Unlock()
		return
	}
	s.session.active = false
	cancel := s.cancel
	done := s.done
	userID := s.session.userID
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	s.logger.Info("Monitoring session stopped",
		zap.String("user_id", userID),
	)
}

// tickLoop 每秒一次：累加会话时长，模拟电池消耗
func (s *MonitorService) tickLoop(ctx context.Context, epoch uint64, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.session.epoch != epoch || !s.session.active {
				s.mu.Unlock()
				return
			}
			s.session.durationSec++
			s.session.batteryLevel -= batteryDrainPerTick
			if s.session.batteryLevel < minBatteryLevel {
				s.session.batteryLevel = minBatteryLevel
			}
			s.mu.Unlock()
		}
	}
}

// OnReadingInserted 读数事件回调（事件流投递，严格按到达顺序处理）
func (s *MonitorService) OnReadingInserted(reading *models.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.active || reading.UserID != s.session.userID {
		return
	}

	// 1. 异常检测（同步，基于上一条快照）
	events := s.session.detector.Evaluate(reading)

	// 2. 重算健康评分
	s.session.healthScore = vitals.Score(reading)

	// 3. 更新对比基准和最新读数
	if s.session.latest != nil {
		s.session.prevVitals = &insight.PreviousVitals{
			HeartRate:   s.session.latest.HeartRate,
			StressLevel: s.session.latest.StressLevel,
		}
	}
	s.session.latest = reading
	s.session.readingCount++

	// 4. 指标
	metrics.ReadingsIngestedTotal.Inc()
	metrics.HealthScore.WithLabelValues(reading.UserID).Set(float64(s.session.healthScore))
	for _, event := range events {
		metrics.AnomaliesDetectedTotal.WithLabelValues(event.Type).Inc()
	}

	// 5. 推送给事件订阅者
	if len(events) > 0 {
		s.broadcast(events)
	}
}

// OnAlertInserted 报警事件回调
// 与读数事件通道相互独立，不假设两者之间的先后顺序
func (s *MonitorService) OnAlertInserted(alert *models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.active || alert.UserID != s.session.userID {
		return
	}

	s.alertManager.Append(*alert)
}

// AcknowledgeAlert 确认报警
// 持久化调用允许在会话停止后完成，但其结果不再作用于已停止的会话
func (s *MonitorService) AcknowledgeAlert(ctx context.Context, alertID string) error {
	s.mu.Lock()
	if !s.session.active {
		s.mu.Unlock()
		return fmt.Errorf("no active monitoring session")
	}
	epoch := s.session.epoch
	s.mu.Unlock()

	if err := s.alertManager.Acknowledge(ctx, alertID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.epoch != epoch || !s.session.active {
		// 会话已结束，确认已持久化但不再计入会话指标
		return nil
	}
	metrics.AlertsAcknowledgedTotal.Inc()
	return nil
}

// DismissAnomaly 撤除一条瞬态异常事件
func (s *MonitorService) DismissAnomaly(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.active {
		return
	}
	s.session.detector.Dismiss(id)
}

// Snapshot 构建当前仪表盘快照
func (s *MonitorService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		UserID:          s.session.userID,
		Active:          s.session.active,
		HealthScore:     s.session.healthScore,
		ScoreLabel:      vitals.ScoreLabel(s.session.healthScore),
		Alerts:          s.alertManager.List(),
		DurationSeconds: s.session.durationSec,
		Duration:        session.FormatDuration(s.session.durationSec),
		BatteryLevel:    s.session.batteryLevel,
	}

	if s.session.detector != nil {
		snap.Anomalies = s.session.detector.Events()
	}
	if s.session.latest != nil {
		snap.Reading = s.session.latest
		snap.Emotion = insight.ClassifyEmotion(s.session.latest.HeartRate, s.session.latest.StressLevel)
		snap.Insights = insight.GenerateInsights(s.session.latest, s.session.prevVitals)
		snap.Recommendations = insight.Recommendations(s.session.latest)
	}

	return snap
}

// SessionSummary 当前会话的汇总（缓存窗口优先，数据库兜底）
func (s *MonitorService) SessionSummary(ctx context.Context) (session.Summary, error) {
	s.mu.Lock()
	userID := s.session.userID
	durationSec := s.session.durationSec
	healthScore := s.session.healthScore
	s.mu.Unlock()

	if userID == "" {
		return session.Summary{}, fmt.Errorf("no monitoring session")
	}

	readings, err := s.recentReadings(ctx, userID)
	if err != nil {
		return session.Summary{}, err
	}

	return session.Summarize(readings, healthScore, durationSec), nil
}

// RecentReadings 当前会话用户的最近读数
func (s *MonitorService) RecentReadings(ctx context.Context) ([]models.Reading, error) {
	s.mu.Lock()
	userID := s.session.userID
	s.mu.Unlock()

	if userID == "" {
		return nil, fmt.Errorf("no monitoring session")
	}
	return s.recentReadings(ctx, userID)
}

// recentReadings 缓存窗口优先，缓存落空或出错时回退到数据库
func (s *MonitorService) recentReadings(ctx context.Context, userID string) ([]models.Reading, error) {
	readings, err := s.cache.GetRecentReadings(ctx, userID)
	if err == nil && len(readings) > 0 {
		return readings, nil
	}
	if err != nil {
		s.logger.Warn("Cache read failed, falling back to database",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	readings, err = s.readingStore.FetchRecent(ctx, userID, s.config.Monitor.Cache.ReadingWindowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent readings: %w", err)
	}
	return readings, nil
}

// Subscribe 订阅异常事件推送
// 返回的通道带缓冲，订阅者消费过慢时事件被丢弃（至多一次投递）
func (s *MonitorService) Subscribe() chan models.AnomalyEvent {
	ch := make(chan models.AnomalyEvent, 16)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe 取消订阅并关闭通道
func (s *MonitorService) Unsubscribe(ch chan models.AnomalyEvent) {
	s.subMu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

// broadcast 向所有订阅者推送异常事件（非阻塞）
func (s *MonitorService) broadcast(events []models.AnomalyEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for ch := range s.subscribers {
		for _, event := range events {
			select {
			case ch <- event:
			default:
				// 订阅者消费过慢，丢弃
			}
		}
	}
}
