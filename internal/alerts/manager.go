package alerts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// Store 报警持久化边界（由 repository.AlertRepository 实现）
type Store interface {
	UpdateAcknowledged(ctx context.Context, alertID string, acknowledged bool) error
}

// Manager 活跃报警管理器
// 持有某个用户的未确认报警集合（最新在前）；确认采用乐观移除，
// 持久化失败时回滚本地状态并把错误交给调用方记录
type Manager struct {
	mu         sync.Mutex
	active     []models.Alert
	generation uint64
	store      Store
	logger     *zap.Logger
}

// NewManager 创建报警管理器
func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
	}
}

// Load 用持久化层的未确认报警初始化活跃集合（会话启动时调用）
// 每次 Load 递增代数，使上一个会话遗留的在途回滚失效
func (m *Manager) Load(alerts []models.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = append([]models.Alert{}, alerts...)
	m.generation++
}

// List 当前未确认报警（最新在前）
func (m *Manager) List() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Alert, len(m.active))
	copy(out, m.active)
	return out
}

// Append 插入一条新报警到队头
func (m *Manager) Append(alert models.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = append([]models.Alert{alert}, m.active...)
}

// Acknowledge 确认报警：乐观移除本地记录并更新持久化状态
// id 不存在时是幂等空操作（持久化更新仍然尝试，失败只记录日志）；
// id 存在但持久化失败时回滚本地移除并返回错误，由调用方决定如何上报
func (m *Manager) Acknowledge(ctx context.Context, alertID string) error {
	m.mu.Lock()
	idx := -1
	var removed models.Alert
	for i, a := range m.active {
		if a.ID == alertID {
			idx = i
			removed = a
			break
		}
	}
	if idx >= 0 {
		m.active = append(m.active[:idx], m.active[idx+1:]...)
	}
	generation := m.generation
	m.mu.Unlock()

	err := m.store.UpdateAcknowledged(ctx, alertID, true)
	if err == nil {
		return nil
	}

	if idx < 0 {
		// 本地本来就没有这条记录，持久化失败只面向运维可见
		m.logger.Error("Failed to persist acknowledge for unknown alert",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return nil
	}

	// 回滚乐观移除，保持本地与持久化一致
	// 持久化期间活跃集合被 Load 重建（新会话已开始）时不回滚，
	// 旧会话的报警不得进入新会话的集合
	m.mu.Lock()
	if m.generation != generation {
		m.mu.Unlock()
		m.logger.Error("Failed to persist acknowledge, active set reloaded, revert skipped",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		return err
	}
	if idx > len(m.active) {
		idx = len(m.active)
	}
	m.active = append(m.active[:idx], append([]models.Alert{removed}, m.active[idx:]...)...)
	m.mu.Unlock()

	m.logger.Error("Failed to persist acknowledge, local removal reverted",
		zap.String("alert_id", alertID),
		zap.Error(err),
	)
	return err
}
