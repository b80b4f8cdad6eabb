package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"vitalwatch/internal/models"
)

// ProfileRepository 用户档案仓库（user_profiles 表，会话期间只读）
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository 创建用户档案仓库
func NewProfileRepository(db *sql.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetProfile 获取用户档案，不存在时返回 nil
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT
			user_id,
			name,
			age,
			baseline_hr,
			baseline_spo2,
			baseline_temp,
			created_at,
			updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var profile models.UserProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Age,
		&profile.BaselineHR,
		&profile.BaselineSpO2,
		&profile.BaselineTemp,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &profile, nil
}
