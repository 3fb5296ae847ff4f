package repository

import (
	"errors"
	"interview_card_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) GetOrCreate(userID uint, category string) (*model.CategoryProgress, error) {
	var progress model.CategoryProgress
	err := r.DB.Where("user_id = ? AND category = ?", userID, category).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = model.CategoryProgress{
			UserID:        userID,
			Category:      category,
			LastStudiedAt: time.Now(),
		}
		if err := r.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	return &progress, err
}

// RecordAnswer bumps the per-category counters for one graded answer.
func (r *ProgressRepository) RecordAnswer(userID uint, category string, correct bool) error {
	progress, err := r.GetOrCreate(userID, category)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"questions_seen":  gorm.Expr("questions_seen + 1"),
		"answered":        gorm.Expr("answered + 1"),
		"last_studied_at": time.Now(),
	}
	if correct {
		updates["correct"] = gorm.Expr("correct + 1")
	}
	return r.DB.Model(&model.CategoryProgress{}).Where("id = ?", progress.ID).Updates(updates).Error
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.CategoryProgress, error) {
	var progress []model.CategoryProgress
	err := r.DB.Where("user_id = ?", userID).Order("category asc").Find(&progress).Error
	return progress, err
}
