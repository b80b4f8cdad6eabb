package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

type fakeStore struct {
	acked []string
	err   error
}

func (f *fakeStore) UpdateAcknowledged(_ context.Context, alertID string, _ bool) error {
	f.acked = append(f.acked, alertID)
	return f.err
}

func makeAlert(id string) models.Alert {
	return models.Alert{
		ID:        id,
		UserID:    "user_001",
		AlertType: models.AlertTypeWarning,
		Sensor:    "heart_rate",
		Message:   "test",
		Value:     105,
		CreatedAt: time.Now(),
	}
}

func TestAppend_NewestFirst(t *testing.T) {
	m := NewManager(&fakeStore{}, zap.NewNop())

	m.Append(makeAlert("a1"))
	m.Append(makeAlert("a2"))

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.Equal(t, "a1", list[1].ID)
}

func TestAcknowledge_RemovesAndPersists(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, zap.NewNop())
	m.Append(makeAlert("a1"))

	err := m.Acknowledge(context.Background(), "a1")
	require.NoError(t, err)
	assert.Empty(t, m.List())
	assert.Equal(t, []string{"a1"}, store.acked)
}

// 确认是幂等的：重复确认或确认不存在的 id 都不报错也不复活报警
func TestAcknowledge_Idempotent(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, zap.NewNop())
	m.Append(makeAlert("a1"))

	require.NoError(t, m.Acknowledge(context.Background(), "a1"))
	require.NoError(t, m.Acknowledge(context.Background(), "a1"))
	require.NoError(t, m.Acknowledge(context.Background(), "ghost"))
	assert.Empty(t, m.List())

	// 持久化更新每次都被尝试
	assert.Equal(t, []string{"a1", "a1", "ghost"}, store.acked)
}

// 持久化失败时回滚本地移除
func TestAcknowledge_RevertsOnStoreFailure(t *testing.T) {
	store := &fakeStore{err: assert.AnError}
	m := NewManager(store, zap.NewNop())
	m.Append(makeAlert("a1"))
	m.Append(makeAlert("a2"))

	err := m.Acknowledge(context.Background(), "a1")
	require.Error(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a2", list[0].ID)
	assert.Equal(t, "a1", list[1].ID) // 回滚到原位置
}

// 不存在的 id 即使持久化失败也对调用方静默
func TestAcknowledge_UnknownIDStoreFailureIsSilent(t *testing.T) {
	store := &fakeStore{err: assert.AnError}
	m := NewManager(store, zap.NewNop())

	err := m.Acknowledge(context.Background(), "ghost")
	assert.NoError(t, err)
}

// reloadingStore 在持久化期间重建活跃集合（模拟新会话启动）后返回失败
type reloadingStore struct {
	manager *Manager
	next    []models.Alert
}

func (f *reloadingStore) UpdateAcknowledged(_ context.Context, _ string, _ bool) error {
	f.manager.Load(f.next)
	return assert.AnError
}

// 持久化失败的回滚不得把旧会话的报警复活到重建后的集合里
func TestAcknowledge_NoRevertAcrossReload(t *testing.T) {
	store := &reloadingStore{next: []models.Alert{makeAlert("new-1")}}
	m := NewManager(store, zap.NewNop())
	store.manager = m
	m.Load([]models.Alert{makeAlert("old-1")})

	err := m.Acknowledge(context.Background(), "old-1")
	require.Error(t, err)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, "new-1", list[0].ID)
}

func TestLoad(t *testing.T) {
	m := NewManager(&fakeStore{}, zap.NewNop())
	m.Load([]models.Alert{makeAlert("a1"), makeAlert("a2")})

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a1", list[0].ID)
}
