package model

import "time"

// CategoryProgress keeps per-user, per-category study counters. Kept
// deliberately thin; no scheduling or repetition intervals.
type CategoryProgress struct {
	BaseModel
	UserID        uint      `gorm:"index:idx_user_category,unique;type:bigint unsigned" json:"userId"`
	Category      string    `gorm:"index:idx_user_category,unique;size:100" json:"category"`
	QuestionsSeen int       `gorm:"default:0" json:"questionsSeen"`
	Answered      int       `gorm:"default:0" json:"answered"`
	Correct       int       `gorm:"default:0" json:"correct"`
	LastStudiedAt time.Time `json:"lastStudiedAt"`
}

func (CategoryProgress) TableName() string {
	return "category_progress"
}
