package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// ReadingRepository 读数仓库（health_readings 表）
type ReadingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingRepository 创建读数仓库
func NewReadingRepository(db *sql.DB, logger *zap.Logger) *ReadingRepository {
	return &ReadingRepository{
		db:     db,
		logger: logger,
	}
}

// FetchRecent 获取最近 limit 条读数（最新在前）
func (r *ReadingRepository) FetchRecent(ctx context.Context, userID string, limit int) ([]models.Reading, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			id,
			user_id,
			heart_rate,
			spo2,
			temperature,
			stress_level,
			gsr_value,
			ecg_value,
			timestamp,
			created_at
		FROM health_readings
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var reading models.Reading
		if err := rows.Scan(
			&reading.ID,
			&reading.UserID,
			&reading.HeartRate,
			&reading.SpO2,
			&reading.Temperature,
			&reading.StressLevel,
			&reading.GSRValue,
			&reading.ECGValue,
			&reading.Timestamp,
			&reading.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// Append 追加一条读数
func (r *ReadingRepository) Append(ctx context.Context, reading *models.Reading) error {
	if reading.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	query := `
		INSERT INTO health_readings (
			id, user_id, heart_rate, spo2, temperature,
			stress_level, gsr_value, ecg_value, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		reading.ID,
		reading.UserID,
		reading.HeartRate,
		reading.SpO2,
		reading.Temperature,
		reading.StressLevel,
		reading.GSRValue,
		reading.ECGValue,
		reading.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}
