package model

import "time"

// QuestionBank groups the questions of one study category, mirroring the
// per-category files of the imported content.
// swagger:model QuestionBank
type QuestionBank struct {
	BaseModel
	Name        string     `gorm:"size:255;not null" json:"name"`
	Category    string     `gorm:"size:100;index;not null" json:"category"`
	Description string     `gorm:"type:text" json:"description"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatorID   uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (QuestionBank) TableName() string {
	return "question_banks"
}
