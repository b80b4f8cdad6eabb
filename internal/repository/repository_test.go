package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestFetchRecent_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewReadingRepository(db, zap.NewNop())

	ctx := context.Background()
	userID := "user_001"
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "heart_rate", "spo2", "temperature",
		"stress_level", "gsr_value", "ecg_value", "timestamp", "created_at",
	}).AddRow(
		uuid.New().String(), userID, 72, 98, 36.6,
		30, 55.2, 12.3, now, now,
	).AddRow(
		uuid.New().String(), userID, 75, 97, 36.7,
		35, 60.1, -4.2, now.Add(-2*time.Second), now.Add(-2*time.Second),
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID, 50).
		WillReturnRows(rows)

	readings, err := repo.FetchRecent(ctx, userID, 50)

	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 72, readings[0].HeartRate)
	assert.Equal(t, 98, readings[0].SpO2)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRecent_EmptyUserID(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	repo := NewReadingRepository(db, zap.NewNop())

	_, err := repo.FetchRecent(context.Background(), "", 50)
	assert.Error(t, err)
}

func TestAppendReading_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewReadingRepository(db, zap.NewNop())

	reading := &models.Reading{
		ID:          uuid.New().String(),
		UserID:      "user_001",
		HeartRate:   72,
		SpO2:        98,
		Temperature: 36.6,
		StressLevel: 30,
		GSRValue:    55.2,
		ECGValue:    12.3,
		Timestamp:   time.Now(),
	}

	mock.ExpectExec(`INSERT INTO health_readings`).
		WithArgs(
			reading.ID, reading.UserID, reading.HeartRate, reading.SpO2,
			reading.Temperature, reading.StressLevel, reading.GSRValue,
			reading.ECGValue, reading.Timestamp,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), reading)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnacknowledged_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewAlertRepository(db, zap.NewNop())

	userID := "user_001"
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "alert_type", "sensor", "message", "value", "acknowledged", "created_at",
	}).AddRow(
		uuid.New().String(), userID, "warning", "heart_rate", "Heart rate slightly elevated.", 105.0, false, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	alerts, err := repo.ListUnacknowledged(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "warning", alerts[0].AlertType)
	assert.False(t, alerts[0].Acknowledged)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlert_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewAlertRepository(db, zap.NewNop())

	alert := &models.Alert{
		ID:        uuid.New().String(),
		UserID:    "user_001",
		AlertType: "info",
		Sensor:    "stress",
		Message:   "Stress levels detected.",
		Value:     62,
	}

	mock.ExpectExec(`INSERT INTO health_alerts`).
		WithArgs(alert.ID, alert.UserID, alert.AlertType, alert.Sensor, alert.Message, alert.Value, alert.Acknowledged).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), alert)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAcknowledged_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewAlertRepository(db, zap.NewNop())

	alertID := uuid.New().String()

	mock.ExpectExec(`UPDATE health_alerts`).
		WithArgs(true, alertID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAcknowledged(context.Background(), alertID, true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// id 不存在时不返回错误（幂等空操作）
func TestUpdateAcknowledged_UnknownID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewAlertRepository(db, zap.NewNop())

	mock.ExpectExec(`UPDATE health_alerts`).
		WithArgs(true, "no-such-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAcknowledged(context.Background(), "no-such-id", true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewProfileRepository(db, zap.NewNop())

	userID := "user_001"
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"user_id", "name", "age", "baseline_hr", "baseline_spo2", "baseline_temp", "created_at", "updated_at",
	}).AddRow(userID, "Alex Doe", 34, 70, 98, 36.5, now, now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	profile, err := repo.GetProfile(context.Background(), userID)

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Alex Doe", profile.Name)
	assert.Equal(t, 70, profile.BaselineHR)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewProfileRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	profile, err := repo.GetProfile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, profile)
}
