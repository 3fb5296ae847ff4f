package model

import (
	"encoding/json"
	"time"
)

type SessionMode string

const (
	ModeFlip   SessionMode = "flip"   // self-assessed flip cards
	ModeChoice SessionMode = "choice" // graded multiple choice
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// StudySession is one run through a category's questions in a single mode.
// QuestionOrder freezes the shuffled order at start time so the session
// replays identically across requests.
// swagger:model StudySession
type StudySession struct {
	UUIDBase
	UserID         uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	Category       string          `gorm:"size:100;index" json:"category"`
	Mode           SessionMode     `gorm:"size:10;not null" json:"mode"`
	ShuffleOptions bool            `gorm:"default:false" json:"shuffleOptions"`
	QuestionOrder  json.RawMessage `gorm:"type:json" json:"-"` // []uint question row ids
	CurrentIndex   int             `gorm:"default:0" json:"currentIndex"`
	Status         SessionStatus   `gorm:"size:20;default:'active'" json:"status"`
	TotalQuestions int             `gorm:"default:0" json:"totalQuestions"`
	AnsweredCount  int             `gorm:"default:0" json:"answeredCount"`
	CorrectCount   int             `gorm:"default:0" json:"correctCount"`
	StartedAt      time.Time       `json:"startedAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}

// SessionAnswer records one graded submission or flip-card self-mark.
type SessionAnswer struct {
	BaseModel
	SessionID       string          `gorm:"index;type:varchar(36)" json:"sessionId"`
	QuestionID      uint            `gorm:"index;type:bigint unsigned" json:"questionId"`
	Position        int             `gorm:"default:0" json:"position"`
	SelectedAnswers json.RawMessage `gorm:"type:json" json:"selectedAnswers,omitempty"` // []int, empty for flip mode
	IsCorrect       bool            `gorm:"default:false" json:"isCorrect"`
	SelfMarked      bool            `gorm:"default:false" json:"selfMarked"`
}

func (SessionAnswer) TableName() string {
	return "session_answers"
}
