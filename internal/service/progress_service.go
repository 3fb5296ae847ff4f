package service

import (
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/repository"
)

type ProgressService struct {
	Progress *repository.ProgressRepository
}

func NewProgressService(progress *repository.ProgressRepository) *ProgressService {
	return &ProgressService{Progress: progress}
}

// CategoryOverview is one category's accumulated study record for a user.
type CategoryOverview struct {
	Category      string  `json:"category"`
	QuestionsSeen int     `json:"questionsSeen"`
	Answered      int     `json:"answered"`
	Correct       int     `json:"correct"`
	Accuracy      float64 `json:"accuracy"`
	LastStudiedAt string  `json:"lastStudiedAt"`
}

func (s *ProgressService) Overview(userID uint) ([]CategoryOverview, error) {
	rows, err := s.Progress.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryOverview, 0, len(rows))
	for _, row := range rows {
		out = append(out, overviewFrom(row))
	}
	return out, nil
}

func (s *ProgressService) Category(userID uint, category string) (*CategoryOverview, error) {
	row, err := s.Progress.GetOrCreate(userID, category)
	if err != nil {
		return nil, err
	}
	overview := overviewFrom(*row)
	return &overview, nil
}

func overviewFrom(row model.CategoryProgress) CategoryOverview {
	overview := CategoryOverview{
		Category:      row.Category,
		QuestionsSeen: row.QuestionsSeen,
		Answered:      row.Answered,
		Correct:       row.Correct,
		LastStudiedAt: row.LastStudiedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if row.Answered > 0 {
		overview.Accuracy = float64(row.Correct) / float64(row.Answered)
	}
	return overview
}
