package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// AlertRepository 报警仓库（health_alerts 表）
// 确认后的记录保留用于审计，只从活跃视图排除
type AlertRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertRepository 创建报警仓库
func NewAlertRepository(db *sql.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// ListUnacknowledged 获取未确认的报警（最新在前）
func (r *AlertRepository) ListUnacknowledged(ctx context.Context, userID string) ([]models.Alert, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT
			id,
			user_id,
			alert_type,
			sensor,
			message,
			value,
			acknowledged,
			created_at
		FROM health_alerts
		WHERE user_id = $1
		  AND acknowledged = false
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.UserID,
			&alert.AlertType,
			&alert.Sensor,
			&alert.Message,
			&alert.Value,
			&alert.Acknowledged,
			&alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}

// Create 创建一条报警
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	query := `
		INSERT INTO health_alerts (
			id, user_id, alert_type, sensor, message, value, acknowledged
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.UserID,
		alert.AlertType,
		alert.Sensor,
		alert.Message,
		alert.Value,
		alert.Acknowledged,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// UpdateAcknowledged 更新确认状态
// 确认是终态操作：业务上只会从 false 更新到 true
func (r *AlertRepository) UpdateAcknowledged(ctx context.Context, alertID string, acknowledged bool) error {
	if alertID == "" {
		return fmt.Errorf("alert_id is required")
	}

	query := `
		UPDATE health_alerts
		SET acknowledged = $1
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, acknowledged, alertID)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}

	// id 不存在时视为空操作，只记录不报错
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		r.logger.Debug("Acknowledge on unknown alert id",
			zap.String("alert_id", alertID),
		)
	}

	return nil
}
