package repository

import (
	"interview_card_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.StudySession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(id string) (*model.StudySession, error) {
	var session model.StudySession
	err := r.DB.Where("id = ?", id).First(&session).Error
	return &session, err
}

func (r *SessionRepository) Update(session *model.StudySession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) ListByUser(userID uint, page, limit int, status string) ([]model.StudySession, int64, error) {
	var sessions []model.StudySession
	var total int64
	query := r.DB.Model(&model.StudySession{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *SessionRepository) CreateAnswer(answer *model.SessionAnswer) error {
	return r.DB.Create(answer).Error
}

func (r *SessionRepository) ListAnswers(sessionID string) ([]model.SessionAnswer, error) {
	var answers []model.SessionAnswer
	err := r.DB.Where("session_id = ?", sessionID).Order("position asc").Find(&answers).Error
	return answers, err
}

func (r *SessionRepository) FindAnswer(sessionID string, questionID uint) (*model.SessionAnswer, error) {
	var answer model.SessionAnswer
	err := r.DB.Where("session_id = ? AND question_id = ?", sessionID, questionID).First(&answer).Error
	return &answer, err
}

// AbandonStale marks active sessions older than the cutoff as abandoned and
// returns how many were touched.
func (r *SessionRepository) AbandonStale(cutoff time.Time) (int64, error) {
	res := r.DB.Model(&model.StudySession{}).
		Where("status = ? AND started_at < ?", model.SessionActive, cutoff).
		Update("status", model.SessionAbandoned)
	return res.RowsAffected, res.Error
}
